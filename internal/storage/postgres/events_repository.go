package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/api/pagination"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `
e.id, e.title, e.location, e.description, e.date, e.owner_id,
u.name AS owner_name, u.email AS owner_email,
e.created_at, e.updated_at`

func (r *EventRepository) List(ctx context.Context, filter events.Filter, paginationArgs events.Pagination) (events.ListResult, error) {
	queryer := r.queryer()

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 50
	}

	var cursorDate *time.Time
	var cursorID *string
	if paginationArgs.After != "" {
		cursor, err := pagination.DecodeEventCursor(paginationArgs.After)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("decode cursor: %w", err)
		}
		cursorDate = &cursor.Timestamp
		cursorID = &cursor.ULID
	}

	var ownerID *string
	if filter.OwnerID != "" {
		ownerID = &filter.OwnerID
	}

	// Fetch limit+1 rows to know whether a next page exists.
	rows, err := queryer.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN users u ON u.id = e.owner_id
 WHERE ($1::text IS NULL OR e.owner_id = $1)
   AND ($2::timestamptz IS NULL OR (e.date, e.id) > ($2, $3))
 ORDER BY e.date ASC, e.id ASC
 LIMIT $4
`, ownerID, cursorDate, cursorID, limit+1)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}

	result := events.ListResult{Events: items}
	if len(items) > limit {
		result.Events = items[:limit]
		last := result.Events[len(result.Events)-1]
		result.NextCursor = pagination.EncodeEventCursor(last.Date, last.ID)
	}
	return result, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN users u ON u.id = e.owner_id
 WHERE e.id = $1
 LIMIT 1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO events (id, title, location, description, date, owner_id)
VALUES ($1, $2, $3, $4, $5, $6)
`, params.ID, params.Title, params.Location, params.Description, params.Date, params.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return r.GetByID(ctx, params.ID)
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE events
   SET title = $2, location = $3, description = $4, date = $5, updated_at = now()
 WHERE id = $1
`, id, params.Title, params.Location, params.Description, params.Date)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the event and its RSVPs in one transaction. When the
// repository already runs inside a transaction the statements join it;
// otherwise a fresh one is opened so the pair stays atomic.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if r.tx != nil {
		return deleteEventCascade(ctx, r.tx, id)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := deleteEventCascade(ctx, tx, id); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func deleteEventCascade(ctx context.Context, queryer DBTX, id string) error {
	if _, err := queryer.Exec(ctx, `DELETE FROM rsvps WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event rsvps: %w", err)
	}

	tag, err := queryer.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	queryer := r.queryer()

	var ownerID string
	err := queryer.QueryRow(ctx, `SELECT owner_id FROM events WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", events.ErrNotFound
		}
		return "", fmt.Errorf("get event owner: %w", err)
	}
	return ownerID, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var data struct {
		ID          string
		Title       string
		Location    string
		Description *string
		Date        time.Time
		OwnerID     string
		OwnerName   string
		OwnerEmail  string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
	if err := row.Scan(
		&data.ID,
		&data.Title,
		&data.Location,
		&data.Description,
		&data.Date,
		&data.OwnerID,
		&data.OwnerName,
		&data.OwnerEmail,
		&data.CreatedAt,
		&data.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &events.Event{
		ID:          data.ID,
		Title:       data.Title,
		Location:    data.Location,
		Description: derefString(data.Description),
		Date:        data.Date,
		OwnerID:     data.OwnerID,
		OwnerName:   data.OwnerName,
		OwnerEmail:  data.OwnerEmail,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}, nil
}
