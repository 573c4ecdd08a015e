// Package postgres provides the PostgreSQL-backed user store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tribune/internal/user"
	"tribune/pkg/platform/sentinel"
)

// Store implements user.Store against the users table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ user.Store = (*Store)(nil)

const userColumns = `
	id, username, email, role,
	is_banned, banned_at, banned_by, ban_reason,
	is_silenced, silenced_until, warnings_count, last_warning_at,
	created_at, updated_at
`

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Store) FindByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *Store) UpdateFlags(ctx context.Context, id uuid.UUID, flags user.ModerationFlags) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			is_banned       = $2,
			banned_at       = $3,
			banned_by       = $4,
			ban_reason      = $5,
			is_silenced     = $6,
			silenced_until  = $7,
			warnings_count  = $8,
			last_warning_at = $9,
			updated_at      = now()
		WHERE id = $1
	`, id,
		flags.IsBanned, flags.BannedAt, flags.BannedBy, nullString(flags.BanReason),
		flags.IsSilenced, flags.SilencedUntil, flags.WarningsCount, flags.LastWarningAt,
	)
	if err != nil {
		return fmt.Errorf("update user flags: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) Save(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, role,
			is_banned, banned_at, banned_by, ban_reason,
			is_silenced, silenced_until, warnings_count, last_warning_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			username        = EXCLUDED.username,
			email           = EXCLUDED.email,
			role            = EXCLUDED.role,
			is_banned       = EXCLUDED.is_banned,
			banned_at       = EXCLUDED.banned_at,
			banned_by       = EXCLUDED.banned_by,
			ban_reason      = EXCLUDED.ban_reason,
			is_silenced     = EXCLUDED.is_silenced,
			silenced_until  = EXCLUDED.silenced_until,
			warnings_count  = EXCLUDED.warnings_count,
			last_warning_at = EXCLUDED.last_warning_at,
			updated_at      = now()
	`, u.ID, u.Username, u.Email, string(u.Role),
		u.Flags.IsBanned, u.Flags.BannedAt, u.Flags.BannedBy, nullString(u.Flags.BanReason),
		u.Flags.IsSilenced, u.Flags.SilencedUntil, u.Flags.WarningsCount, u.Flags.LastWarningAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u         user.User
		role      string
		banReason sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &role,
		&u.Flags.IsBanned, &u.Flags.BannedAt, &u.Flags.BannedBy, &banReason,
		&u.Flags.IsSilenced, &u.Flags.SilencedUntil, &u.Flags.WarningsCount, &u.Flags.LastWarningAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	u.Flags.BanReason = banReason.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
