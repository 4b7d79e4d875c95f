package storage

import (
	"context"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/rsvps"
	"github.com/gatherly/server/internal/domain/users"
)

// Repository groups data access by domain. Implementations are
// injected into services and the authorization engine, so tests can
// substitute the in-memory store for postgres.
type Repository interface {
	Users() users.Repository
	Events() events.Repository
	RSVPs() rsvps.Repository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
