// Package memory implements storage.Repository in process memory.
// It backs unit tests and mirrors the postgres implementation's
// semantics, including the RSVP cascade on event deletion.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gatherly/server/internal/api/pagination"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/rsvps"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/storage"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]users.User
	events     map[string]events.Event
	rsvps      map[string]rsvps.RSVP
	rsvpSerial int
}

var _ storage.Repository = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:  make(map[string]users.User),
		events: make(map[string]events.Event),
		rsvps:  make(map[string]rsvps.RSVP),
	}
}

func (s *Store) Users() users.Repository   { return (*userRepo)(s) }
func (s *Store) Events() events.Repository { return (*eventRepo)(s) }
func (s *Store) RSVPs() rsvps.Repository   { return (*rsvpRepo)(s) }

// WithTx runs fn against the same store. The memory store mutates
// under a single mutex, so per-call atomicity is already guaranteed.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, s)
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, params users.CreateParams) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, params.Email) {
			return nil, users.ErrEmailTaken
		}
	}
	user := users.User{
		ID:           params.ID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			value := user
			return &value, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

type eventRepo Store

func (r *eventRepo) List(_ context.Context, filter events.Filter, paging events.Pagination) (events.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]events.Event, 0, len(r.events))
	for _, event := range r.events {
		if filter.OwnerID != "" && event.OwnerID != filter.OwnerID {
			continue
		}
		r.decorateOwner(&event)
		items = append(items, event)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})

	if paging.After != "" {
		cursor, err := pagination.DecodeEventCursor(paging.After)
		if err != nil {
			return events.ListResult{}, err
		}
		filtered := items[:0]
		for _, event := range items {
			if event.Date.After(cursor.Timestamp) ||
				(event.Date.Equal(cursor.Timestamp) && event.ID > cursor.ULID) {
				filtered = append(filtered, event)
			}
		}
		items = filtered
	}

	limit := paging.Limit
	if limit <= 0 {
		limit = 50
	}
	result := events.ListResult{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeEventCursor(last.Date, last.ID)
	}
	result.Events = items
	return result, nil
}

func (r *eventRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	r.decorateOwner(&event)
	return &event, nil
}

func (r *eventRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	event := events.Event{
		ID:          params.ID,
		Title:       params.Title,
		Location:    params.Location,
		Description: params.Description,
		Date:        params.Date,
		OwnerID:     params.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.events[event.ID] = event
	r.decorateOwner(&event)
	return &event, nil
}

func (r *eventRepo) Update(_ context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	event.Title = params.Title
	event.Location = params.Location
	event.Description = params.Description
	event.Date = params.Date
	event.UpdatedAt = time.Now().UTC()
	r.events[id] = event
	r.decorateOwner(&event)
	return &event, nil
}

func (r *eventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return events.ErrNotFound
	}
	for rsvpID, rsvp := range r.rsvps {
		if rsvp.EventID == id {
			delete(r.rsvps, rsvpID)
		}
	}
	delete(r.events, id)
	return nil
}

func (r *eventRepo) OwnerOf(_ context.Context, id string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return "", events.ErrNotFound
	}
	return event.OwnerID, nil
}

func (r *eventRepo) decorateOwner(event *events.Event) {
	if owner, ok := r.users[event.OwnerID]; ok {
		event.OwnerName = owner.Name
		event.OwnerEmail = owner.Email
	}
}

type rsvpRepo Store

func (r *rsvpRepo) Create(_ context.Context, params rsvps.CreateParams) (*rsvps.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[params.EventID]
	if !ok {
		return nil, events.ErrNotFound
	}
	r.rsvpSerial++
	rsvp := rsvps.RSVP{
		ID:         params.ID,
		Name:       params.Name,
		Email:      params.Email,
		EventID:    params.EventID,
		CreatedAt:  time.Now().UTC().Add(time.Duration(r.rsvpSerial) * time.Microsecond),
		EventTitle: event.Title,
		EventDate:  event.Date,
	}
	r.rsvps[rsvp.ID] = rsvp
	return &rsvp, nil
}

func (r *rsvpRepo) ListByEvent(_ context.Context, eventID string) ([]rsvps.RSVP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]rsvps.RSVP, 0)
	for _, rsvp := range r.rsvps {
		if rsvp.EventID == eventID {
			items = append(items, rsvp)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (r *rsvpRepo) ListByEventOwner(_ context.Context, ownerID string) ([]rsvps.RSVP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]rsvps.RSVP, 0)
	for _, rsvp := range r.rsvps {
		event, ok := r.events[rsvp.EventID]
		if !ok {
			continue
		}
		if ownerID != "" && event.OwnerID != ownerID {
			continue
		}
		rsvp.EventTitle = event.Title
		rsvp.EventDate = event.Date
		items = append(items, rsvp)
	}
	sortNewestFirst(items)
	return items, nil
}

func sortNewestFirst(items []rsvps.RSVP) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}
