package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/gatherly/server/internal/domain/rsvps"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

func seedOwner(t *testing.T, store *Store, email string) *users.User {
	t.Helper()

	user, err := store.Users().Create(context.Background(), users.CreateParams{
		ID:           ids.NewUUID(),
		Name:         "Owner",
		Email:        email,
		PasswordHash: "x",
		Role:         auth.RoleEventOwner,
	})
	require.NoError(t, err)
	return user
}

func seedEvent(t *testing.T, store *Store, ownerID string, date time.Time) *events.Event {
	t.Helper()

	id, err := ids.NewULID()
	require.NoError(t, err)
	event, err := store.Events().Create(context.Background(), events.CreateParams{
		ID:       id,
		Title:    "Event " + id[:4],
		Location: "Main Hall",
		Date:     date,
		OwnerID:  ownerID,
	})
	require.NoError(t, err)
	return event
}

func TestUserRepo_EmailUnique(t *testing.T) {
	store := NewStore()
	seedOwner(t, store, "owner@example.com")

	_, err := store.Users().Create(context.Background(), users.CreateParams{
		ID:    ids.NewUUID(),
		Name:  "Duplicate",
		Email: "OWNER@example.com",
		Role:  auth.RoleStaff,
	})
	require.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestEventRepo_DeleteCascadesRSVPs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := seedOwner(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, time.Now().Add(24*time.Hour))
	other := seedEvent(t, store, owner.ID, time.Now().Add(48*time.Hour))

	const n = 5
	for i := 0; i < n; i++ {
		id, err := ids.NewULID()
		require.NoError(t, err)
		_, err = store.RSVPs().Create(ctx, rsvps.CreateParams{
			ID:      id,
			Name:    fmt.Sprintf("Guest %d", i),
			Email:   fmt.Sprintf("guest%d@example.com", i),
			EventID: event.ID,
		})
		require.NoError(t, err)
	}
	keepID, err := ids.NewULID()
	require.NoError(t, err)
	_, err = store.RSVPs().Create(ctx, rsvps.CreateParams{
		ID:      keepID,
		Name:    "Keeper",
		Email:   "keeper@example.com",
		EventID: other.ID,
	})
	require.NoError(t, err)

	require.NoError(t, store.Events().Delete(ctx, event.ID))

	_, err = store.Events().GetByID(ctx, event.ID)
	require.ErrorIs(t, err, events.ErrNotFound)

	gone, err := store.RSVPs().ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Empty(t, gone)

	// RSVPs for unrelated events survive.
	kept, err := store.RSVPs().ListByEvent(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
}

func TestEventRepo_DeleteMissing(t *testing.T) {
	store := NewStore()
	err := store.Events().Delete(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepo_ListPaginates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := seedOwner(t, store, "owner@example.com")

	base := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEvent(t, store, owner.ID, base.Add(time.Duration(i)*time.Hour))
	}

	first, err := store.Events().List(ctx, events.Filter{}, events.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Events, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := store.Events().List(ctx, events.Filter{}, events.Pagination{Limit: 2, After: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Events, 2)
	require.NotEmpty(t, second.NextCursor)

	third, err := store.Events().List(ctx, events.Filter{}, events.Pagination{Limit: 2, After: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, third.Events, 1)
	require.Empty(t, third.NextCursor)

	seen := map[string]bool{}
	for _, page := range [][]events.Event{first.Events, second.Events, third.Events} {
		for _, event := range page {
			require.False(t, seen[event.ID], "event %s returned twice", event.ID)
			seen[event.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestEventRepo_ListOwnerFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := seedOwner(t, store, "owner@example.com")
	other := seedOwner(t, store, "other@example.com")
	seedEvent(t, store, owner.ID, time.Now().Add(24*time.Hour))
	seedEvent(t, store, other.ID, time.Now().Add(48*time.Hour))

	result, err := store.Events().List(ctx, events.Filter{OwnerID: owner.ID}, events.Pagination{})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.Equal(t, owner.ID, result.Events[0].OwnerID)
	require.Equal(t, "owner@example.com", result.Events[0].OwnerEmail)
}

func TestRSVPRepo_RequiresParentEvent(t *testing.T) {
	store := NewStore()
	id, err := ids.NewULID()
	require.NoError(t, err)

	_, err = store.RSVPs().Create(context.Background(), rsvps.CreateParams{
		ID:      id,
		Name:    "Guest",
		Email:   "guest@example.com",
		EventID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
	})
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestRSVPRepo_ListByEventOwnerNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := seedOwner(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, time.Now().Add(24*time.Hour))

	var lastID string
	for i := 0; i < 3; i++ {
		id, err := ids.NewULID()
		require.NoError(t, err)
		_, err = store.RSVPs().Create(ctx, rsvps.CreateParams{
			ID:      id,
			Name:    fmt.Sprintf("Guest %d", i),
			Email:   fmt.Sprintf("guest%d@example.com", i),
			EventID: event.ID,
		})
		require.NoError(t, err)
		lastID = id
	}

	items, err := store.RSVPs().ListByEventOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, lastID, items[0].ID)
	require.Equal(t, event.Title, items[0].EventTitle)

	// Empty owner id selects every event's RSVPs.
	all, err := store.RSVPs().ListByEventOwner(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	none, err := store.RSVPs().ListByEventOwner(ctx, "someone-else")
	require.NoError(t, err)
	require.Empty(t, none)
}
