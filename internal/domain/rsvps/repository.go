package rsvps

import (
	"context"
	"time"
)

type RSVP struct {
	ID        string
	Name      string
	Email     string
	EventID   string
	CreatedAt time.Time

	// Populated on owner-facing listings so the dashboard can show
	// which event each attendee signed up for.
	EventTitle string
	EventDate  time.Time
}

type CreateParams struct {
	ID      string
	Name    string
	Email   string
	EventID string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*RSVP, error)
	// ListByEvent returns the event's RSVPs, newest first.
	ListByEvent(ctx context.Context, eventID string) ([]RSVP, error)
	// ListByEventOwner returns RSVPs across all events owned by
	// ownerID, newest first. An empty ownerID selects every event.
	ListByEventOwner(ctx context.Context, ownerID string) ([]RSVP, error)
}
