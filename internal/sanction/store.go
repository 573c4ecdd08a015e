package sanction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxPageSize caps the limit a caller can request from listing queries.
const MaxPageSize = 100

// SortField names the supported orderings for listing queries.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortKind      SortField = "kind"
	SortSeverity  SortField = "severity"
)

// Valid reports whether the sort field is supported.
func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortKind, SortSeverity:
		return true
	}
	return false
}

// Filter narrows listing queries. Nil fields match everything.
type Filter struct {
	UserID      *uuid.UUID
	ModeratorID *uuid.UUID
	Kind        *Kind
	Severity    *Severity
	IsActive    *bool
}

// Page controls pagination and ordering of listing queries.
type Page struct {
	Number int
	Limit  int
	Sort   SortField
	Desc   bool
}

// Normalize clamps the page to sane bounds and fills defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if !p.Sort.Valid() {
		p.Sort = SortCreatedAt
		p.Desc = true
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PagedResult is one page of sanctions plus the total match count.
type PagedResult struct {
	Sanctions []*Sanction
	Total     int
	Page      int
	Limit     int
}

// Stats aggregates sanction counts, optionally scoped to one moderator.
type Stats struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	ByKind     map[Kind]int     `json:"by_kind"`
	BySeverity map[Severity]int `json:"by_severity"`
}

// Store is the persistence contract for sanction records. Implementations
// return sentinel.ErrNotFound for absent records and
// sentinel.ErrInvalidState when revoking a sanction that is already
// inactive.
type Store interface {
	Create(ctx context.Context, s *Sanction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sanction, error)
	// ListByUser returns the user's sanction history, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*Sanction, error)
	// ListActiveByUser returns only sanctions in force at now: active and
	// not time-expired.
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*Sanction, error)
	List(ctx context.Context, filter Filter, page Page) (*PagedResult, error)
	// Revoke marks the sanction inactive and stamps the revocation triple.
	Revoke(ctx context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string, at time.Time) (*Sanction, error)
	// DeactivateExpired flips is_active off for every sanction whose expiry
	// has passed and returns the rows it deactivated.
	DeactivateExpired(ctx context.Context, now time.Time) ([]*Sanction, error)
	CountActiveByKind(ctx context.Context, kind Kind) (int, error)
	Stats(ctx context.Context, moderatorID *uuid.UUID) (*Stats, error)
}
