// Package postgres provides the PostgreSQL-backed sanction store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tribune/internal/sanction"
	"tribune/pkg/platform/sentinel"
)

// Store implements sanction.Store against the sanctions table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ sanction.Store = (*Store)(nil)

const sanctionColumns = `
	id, user_id, moderator_id, kind, reason,
	duration_hours, starts_at, expires_at,
	is_active, severity, is_automatic, evidence,
	created_at, updated_at,
	revoked_at, revoked_by, revoke_reason
`

func (s *Store) Create(ctx context.Context, sn *sanction.Sanction) error {
	evidence, err := marshalEvidence(sn.Evidence)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sanctions (
			id, user_id, moderator_id, kind, reason,
			duration_hours, starts_at, expires_at,
			is_active, severity, is_automatic, evidence,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
	`, sn.ID, sn.UserID, sn.ModeratorID, string(sn.Kind), sn.Reason,
		sn.DurationHours, sn.StartsAt, sn.ExpiresAt,
		sn.IsActive, string(sn.Severity), sn.IsAutomatic, evidence,
	)
	if err != nil {
		return fmt.Errorf("insert sanction: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*sanction.Sanction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sanctionColumns+` FROM sanctions WHERE id = $1`, id)
	sn, err := scanSanction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sanction: %w", err)
	}
	return sn, nil
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*sanction.Sanction, error) {
	query := `SELECT ` + sanctionColumns + ` FROM sanctions WHERE user_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sanctions by user: %w", err)
	}
	return collectSanctions(rows)
}

func (s *Store) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*sanction.Sanction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sanctionColumns+`
		FROM sanctions
		WHERE user_id = $1
		  AND is_active
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
	`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("query active sanctions: %w", err)
	}
	return collectSanctions(rows)
}

func (s *Store) List(ctx context.Context, filter sanction.Filter, page sanction.Page) (*sanction.PagedResult, error) {
	page = page.Normalize()

	where, args := buildWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sanctions`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sanctions: %w", err)
	}

	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	// page.Sort is validated by Normalize; it is safe to interpolate.
	query := fmt.Sprintf(`SELECT %s FROM sanctions%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		sanctionColumns, where, string(page.Sort), dir, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sanctions: %w", err)
	}
	sanctions, err := collectSanctions(rows)
	if err != nil {
		return nil, err
	}
	return &sanction.PagedResult{
		Sanctions: sanctions,
		Total:     total,
		Page:      page.Number,
		Limit:     page.Limit,
	}, nil
}

func (s *Store) Revoke(ctx context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string, at time.Time) (*sanction.Sanction, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE sanctions SET
			is_active     = false,
			revoked_at    = $2,
			revoked_by    = $3,
			revoke_reason = $4,
			updated_at    = now()
		WHERE id = $1 AND is_active
		RETURNING `+sanctionColumns,
		id, at, revokedBy, reason,
	)
	sn, err := scanSanction(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing sanction from one already inactive.
		var exists bool
		if qErr := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sanctions WHERE id = $1)`, id).Scan(&exists); qErr != nil {
			return nil, fmt.Errorf("check sanction existence: %w", qErr)
		}
		if exists {
			return nil, sentinel.ErrInvalidState
		}
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("revoke sanction: %w", err)
	}
	return sn, nil
}

func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) ([]*sanction.Sanction, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE sanctions SET
			is_active  = false,
			updated_at = now()
		WHERE is_active
		  AND expires_at IS NOT NULL
		  AND expires_at <= $1
		RETURNING `+sanctionColumns,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("deactivate expired sanctions: %w", err)
	}
	return collectSanctions(rows)
}

func (s *Store) CountActiveByKind(ctx context.Context, kind sanction.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sanctions WHERE kind = $1 AND is_active`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sanctions by kind: %w", err)
	}
	return n, nil
}

func (s *Store) Stats(ctx context.Context, moderatorID *uuid.UUID) (*sanction.Stats, error) {
	where := ""
	var args []any
	if moderatorID != nil {
		where = ` WHERE moderator_id = $1`
		args = append(args, *moderatorID)
	}

	stats := &sanction.Stats{
		ByKind:     make(map[sanction.Kind]int),
		BySeverity: make(map[sanction.Severity]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE is_active)
		FROM sanctions`+where, args...).Scan(&stats.Total, &stats.Active)
	if err != nil {
		return nil, fmt.Errorf("count sanctions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, severity, count(*)
		FROM sanctions`+where+`
		GROUP BY kind, severity`, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate sanctions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, severity string
			n              int
		)
		if err := rows.Scan(&kind, &severity, &n); err != nil {
			return nil, fmt.Errorf("scan sanction aggregate: %w", err)
		}
		stats.ByKind[sanction.Kind(kind)] += n
		stats.BySeverity[sanction.Severity(severity)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sanction aggregates: %w", err)
	}
	return stats, nil
}

func buildWhere(filter sanction.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.ModeratorID != nil {
		add("moderator_id = $%d", *filter.ModeratorID)
	}
	if filter.Kind != nil {
		add("kind = $%d", string(*filter.Kind))
	}
	if filter.Severity != nil {
		add("severity = $%d", string(*filter.Severity))
	}
	if filter.IsActive != nil {
		add("is_active = $%d", *filter.IsActive)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func collectSanctions(rows *sql.Rows) ([]*sanction.Sanction, error) {
	defer rows.Close()

	var sanctions []*sanction.Sanction
	for rows.Next() {
		sn, err := scanSanction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sanction: %w", err)
		}
		sanctions = append(sanctions, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sanctions: %w", err)
	}
	return sanctions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSanction(row rowScanner) (*sanction.Sanction, error) {
	var (
		sn           sanction.Sanction
		kind         string
		severity     string
		evidence     []byte
		revokeReason sql.NullString
	)
	err := row.Scan(
		&sn.ID, &sn.UserID, &sn.ModeratorID, &kind, &sn.Reason,
		&sn.DurationHours, &sn.StartsAt, &sn.ExpiresAt,
		&sn.IsActive, &severity, &sn.IsAutomatic, &evidence,
		&sn.CreatedAt, &sn.UpdatedAt,
		&sn.RevokedAt, &sn.RevokedBy, &revokeReason,
	)
	if err != nil {
		return nil, err
	}
	sn.Kind = sanction.Kind(kind)
	sn.Severity = sanction.Severity(severity)
	sn.RevokeReason = revokeReason.String
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &sn.Evidence); err != nil {
			return nil, fmt.Errorf("decode evidence: %w", err)
		}
	}
	return &sn, nil
}

func marshalEvidence(evidence map[string]any) ([]byte, error) {
	if len(evidence) == 0 {
		return nil, nil
	}
	return json.Marshal(evidence)
}
