package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/domain/rsvps"
	"github.com/jackc/pgx/v5"
)

func (r *RSVPRepository) Create(ctx context.Context, params rsvps.CreateParams) (*rsvps.RSVP, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO rsvps (id, name, email, event_id)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, event_id, created_at
`, params.ID, params.Name, params.Email, params.EventID)

	var rsvp rsvps.RSVP
	if err := row.Scan(&rsvp.ID, &rsvp.Name, &rsvp.Email, &rsvp.EventID, &rsvp.CreatedAt); err != nil {
		return nil, fmt.Errorf("create rsvp: %w", err)
	}
	return &rsvp, nil
}

func (r *RSVPRepository) ListByEvent(ctx context.Context, eventID string) ([]rsvps.RSVP, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT r.id, r.name, r.email, r.event_id, r.created_at, e.title, e.date
  FROM rsvps r
  JOIN events e ON e.id = r.event_id
 WHERE r.event_id = $1
 ORDER BY r.created_at DESC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	return collectRSVPs(rows)
}

func (r *RSVPRepository) ListByEventOwner(ctx context.Context, ownerID string) ([]rsvps.RSVP, error) {
	queryer := r.queryer()

	var owner *string
	if ownerID != "" {
		owner = &ownerID
	}

	rows, err := queryer.Query(ctx, `
SELECT r.id, r.name, r.email, r.event_id, r.created_at, e.title, e.date
  FROM rsvps r
  JOIN events e ON e.id = r.event_id
 WHERE $1::text IS NULL OR e.owner_id = $1
 ORDER BY r.created_at DESC
`, owner)
	if err != nil {
		return nil, fmt.Errorf("list rsvps by owner: %w", err)
	}
	defer rows.Close()

	return collectRSVPs(rows)
}

func collectRSVPs(rows pgx.Rows) ([]rsvps.RSVP, error) {
	items := make([]rsvps.RSVP, 0)
	for rows.Next() {
		var data struct {
			ID         string
			Name       string
			Email      string
			EventID    string
			CreatedAt  time.Time
			EventTitle string
			EventDate  time.Time
		}
		if err := rows.Scan(
			&data.ID,
			&data.Name,
			&data.Email,
			&data.EventID,
			&data.CreatedAt,
			&data.EventTitle,
			&data.EventDate,
		); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		items = append(items, rsvps.RSVP{
			ID:         data.ID,
			Name:       data.Name,
			Email:      data.Email,
			EventID:    data.EventID,
			CreatedAt:  data.CreatedAt,
			EventTitle: data.EventTitle,
			EventDate:  data.EventDate,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return items, nil
}
