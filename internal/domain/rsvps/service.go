package rsvps

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// Mailer sends an RSVP confirmation to the submitter. Implementations
// may be disabled; failures never fail the RSVP itself.
type Mailer interface {
	SendRSVPConfirmation(ctx context.Context, to, name, eventTitle string, eventDate time.Time) error
}

type Service struct {
	repo   Repository
	events events.Repository
	mailer Mailer
	logger zerolog.Logger
}

func NewService(repo Repository, eventRepo events.Repository, mailer Mailer, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventRepo,
		mailer: mailer,
		logger: logger.With().Str("component", "rsvps").Logger(),
	}
}

// Create records a public RSVP. The parent event must exist: the
// route guard already checked it, but the invariant is re-validated
// here so no RSVP is ever created against a missing event.
func (s *Service) Create(ctx context.Context, params CreateParams) (*RSVP, error) {
	event, err := s.events.GetByID(ctx, params.EventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("lookup event %q: %w", params.EventID, err)
	}

	if params.ID == "" {
		id, err := ids.NewULID()
		if err != nil {
			return nil, fmt.Errorf("mint rsvp id: %w", err)
		}
		params.ID = id
	}

	rsvp, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendRSVPConfirmation(ctx, rsvp.Email, rsvp.Name, event.Title, event.Date); err != nil {
			s.logger.Warn().Err(err).Str("rsvp_id", rsvp.ID).Msg("confirmation email failed")
		}
	}

	return rsvp, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]RSVP, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// ExportByEvent returns the event's RSVPs oldest first, the order the
// attendee sheet is written in. Listings stay newest first.
func (s *Service) ExportByEvent(ctx context.Context, eventID string) ([]RSVP, error) {
	items, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(items)
	return items, nil
}

func (s *Service) ListByEventOwner(ctx context.Context, ownerID string) ([]RSVP, error) {
	return s.repo.ListByEventOwner(ctx, ownerID)
}

// WriteCSV writes the attendee sheet for an export: one row per RSVP
// with name, email and submission timestamp.
func WriteCSV(w io.Writer, items []RSVP) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Name", "Email", "Timestamp"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		record := []string{item.Name, item.Email, item.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
