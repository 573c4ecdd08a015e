package sanction

import (
	"context"
	"errors"

	"github.com/google/uuid"

	dErrors "tribune/pkg/domain-errors"
	"tribune/pkg/platform/sentinel"
	"tribune/pkg/requestcontext"
)

// ListResult is one page of sanction views.
type ListResult struct {
	Sanctions []View `json:"sanctions"`
	Total     int    `json:"total"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// List returns a filtered, paginated page of sanctions.
func (s *Service) List(ctx context.Context, filter Filter, page Page) (*ListResult, error) {
	result, err := s.sanctions.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sanctions")
	}

	now := requestcontext.Now(ctx)
	views := make([]View, 0, len(result.Sanctions))
	for _, sn := range result.Sanctions {
		views = append(views, NewView(*sn, now))
	}
	return &ListResult{
		Sanctions: views,
		Total:     result.Total,
		Page:      result.Page,
		Limit:     result.Limit,
	}, nil
}

// UserHistory returns a user's sanctions, newest first. With includeInactive
// false only sanctions still in force are returned.
func (s *Service) UserHistory(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]View, error) {
	if userID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID is required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}

	now := requestcontext.Now(ctx)
	var (
		sanctions []*Sanction
		err       error
	)
	if includeInactive {
		sanctions, err = s.sanctions.ListByUser(ctx, userID, true)
	} else {
		sanctions, err = s.sanctions.ListActiveByUser(ctx, userID, now)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user sanctions")
	}

	views := make([]View, 0, len(sanctions))
	for _, sn := range sanctions {
		views = append(views, NewView(*sn, now))
	}
	return views, nil
}

// Get returns a single sanction by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sanction ID is required")
	}
	sn, err := s.sanctions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "sanction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve sanction")
	}
	view := NewView(*sn, requestcontext.Now(ctx))
	return &view, nil
}

// Stats aggregates sanction counts, optionally scoped to one moderator.
func (s *Service) Stats(ctx context.Context, moderatorID *uuid.UUID) (*Stats, error) {
	stats, err := s.sanctions.Stats(ctx, moderatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute sanction stats")
	}
	return stats, nil
}
