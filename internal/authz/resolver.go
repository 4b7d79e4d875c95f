package authz

import (
	"context"
	"errors"

	"github.com/gatherly/server/internal/domain/events"
)

// EventOwnerResolver resolves ownership through the events store.
// RSVPs resolve through their parent event, so both resource kinds
// take an event id.
type EventOwnerResolver struct {
	Events events.Repository
}

var _ OwnerResolver = EventOwnerResolver{}

func (r EventOwnerResolver) ResolveOwner(ctx context.Context, resource Resource, id string) (string, error) {
	switch resource {
	case ResourceEvent, ResourceRSVP:
		ownerID, err := r.Events.OwnerOf(ctx, id)
		if err != nil {
			if errors.Is(err, events.ErrNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
		return ownerID, nil
	default:
		return "", ErrNotFound
	}
}
