package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the full DDL, idempotent so startup can always run it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	role            TEXT NOT NULL DEFAULT 'user',
	is_banned       BOOLEAN NOT NULL DEFAULT FALSE,
	banned_at       TIMESTAMPTZ,
	banned_by       UUID,
	ban_reason      TEXT,
	is_silenced     BOOLEAN NOT NULL DEFAULT FALSE,
	silenced_until  TIMESTAMPTZ,
	warnings_count  INTEGER NOT NULL DEFAULT 0,
	last_warning_at TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sanctions (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL REFERENCES users (id),
	moderator_id   UUID NOT NULL REFERENCES users (id),
	kind           TEXT NOT NULL,
	reason         TEXT NOT NULL,
	duration_hours INTEGER,
	starts_at      TIMESTAMPTZ NOT NULL,
	expires_at     TIMESTAMPTZ,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	severity       TEXT NOT NULL,
	is_automatic   BOOLEAN NOT NULL DEFAULT FALSE,
	evidence       JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	revoked_at     TIMESTAMPTZ,
	revoked_by     UUID,
	revoke_reason  TEXT
);

CREATE INDEX IF NOT EXISTS idx_sanctions_user_active
	ON sanctions (user_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_sanctions_expiry
	ON sanctions (expires_at) WHERE is_active AND expires_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS audit_log (
	id         UUID PRIMARY KEY,
	timestamp  TIMESTAMPTZ NOT NULL,
	actor_id   UUID NOT NULL,
	target_id  UUID,
	action     TEXT NOT NULL,
	details    JSONB,
	ip         TEXT,
	user_agent TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_target ON audit_log (target_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS outbox (
	id             UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id   UUID NOT NULL,
	event_type     TEXT NOT NULL,
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_outbox_pending
	ON outbox (created_at) WHERE published_at IS NULL;
`

// Migrate applies the schema. Every statement is idempotent, so it is safe
// to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
