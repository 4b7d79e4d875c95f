package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          string
	Title       string
	Location    string
	Description string
	Date        time.Time
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	ID          string
	Title       string
	Location    string
	Description string
	Date        time.Time
	OwnerID     string
}

type UpdateParams struct {
	Title       string
	Location    string
	Description string
	Date        time.Time
}

// Filter constrains listings. The zero value selects all events; a
// non-empty OwnerID selects only that user's events.
type Filter struct {
	OwnerID string
}

type Pagination struct {
	Limit int
	After string
}

type ListResult struct {
	Events     []Event
	NextCursor string
}

type Repository interface {
	List(ctx context.Context, filter Filter, pagination Pagination) (ListResult, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Event, error)
	// Delete removes the event and its RSVPs as one atomic operation;
	// the event must not be deleted if RSVP cleanup fails.
	Delete(ctx context.Context, id string) error
	// OwnerOf returns the owning user id, or ErrNotFound.
	OwnerOf(ctx context.Context, id string) (string, error)
}
