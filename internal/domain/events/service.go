package events

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gatherly/server/internal/api/pagination"
	"github.com/gatherly/server/internal/domain/ids"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter Filter, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filter, pagination)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if params.ID == "" {
		id, err := ids.NewULID()
		if err != nil {
			return nil, fmt.Errorf("mint event id: %w", err)
		}
		params.ID = id
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Event, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes the event together with its RSVPs. The repository
// performs the cascade atomically.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseListQuery parses limit/after query parameters for event listings.
func ParseListQuery(values url.Values) (Pagination, error) {
	result := Pagination{Limit: 50}

	limit, err := parseLimit(values)
	if err != nil {
		return result, err
	}
	result.Limit = limit

	after := strings.TrimSpace(values.Get("after"))
	if after != "" {
		if _, err := pagination.DecodeEventCursor(after); err != nil {
			return result, FilterError{Field: "after", Message: "invalid cursor"}
		}
	}
	result.After = after

	return result, nil
}

func parseLimit(values url.Values) (int, error) {
	limit := 50
	rawLimit := strings.TrimSpace(values.Get("limit"))
	if rawLimit == "" {
		return limit, nil
	}
	parsed, err := strconv.Atoi(rawLimit)
	if err != nil {
		return 0, FilterError{Field: "limit", Message: "must be a number"}
	}
	if parsed < 1 || parsed > 200 {
		return 0, FilterError{Field: "limit", Message: "must be between 1 and 200"}
	}
	return parsed, nil
}
