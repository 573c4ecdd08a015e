// Package postgres persists audit events and feeds the transactional outbox.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tribune/internal/audit"
	txcontext "tribune/pkg/platform/tx"
)

// Store implements audit.Store. Every append writes two rows: the queryable
// audit_log entry and an outbox entry that the Kafka publisher ships
// asynchronously. Both land in the caller's transaction when one is present
// in the context.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ audit.Store = (*Store)(nil)

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for proper deserialization by downstream consumers.
type outboxPayload struct {
	ID        string            `json:"ID"`
	Timestamp string            `json:"Timestamp"`
	ActorID   string            `json:"ActorID"`
	TargetID  string            `json:"TargetID,omitempty"`
	Action    string            `json:"Action"`
	Details   map[string]string `json:"Details,omitempty"`
	IP        string            `json:"IP,omitempty"`
	UserAgent string            `json:"UserAgent,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		details = []byte("{}")
	}

	exec := s.execer(ctx)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, actor_id, target_id, action, details, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.Timestamp, event.ActorID, event.TargetID, string(event.Action),
		details, nullString(event.IP), nullString(event.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	payload := outboxPayload{
		ID:        event.ID.String(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		ActorID:   event.ActorID.String(),
		Action:    string(event.Action),
		Details:   event.Details,
		IP:        event.IP,
		UserAgent: event.UserAgent,
	}
	if event.TargetID != nil {
		payload.TargetID = event.TargetID.String()
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	aggregateID := event.ID
	if event.TargetID != nil {
		aggregateID = *event.TargetID
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), "audit", aggregateID, string(event.Action), payloadBytes, time.Now())
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

const eventColumns = `id, timestamp, actor_id, target_id, action, details, ip, user_agent`

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM audit_log ORDER BY timestamp DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListByTarget(ctx context.Context, targetID uuid.UUID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM audit_log WHERE target_id = $1 ORDER BY timestamp DESC
	`, targetID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			action  string
			details []byte
			ip      sql.NullString
			ua      sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &e.TargetID, &action, &details, &ip, &ua); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.IP = ip.String
		e.UserAgent = ua.String
		_ = json.Unmarshal(details, &e.Details)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
