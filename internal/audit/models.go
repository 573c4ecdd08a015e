// Package audit records who did what to whom. Entries are append-only and
// compliance-critical: commands fail when their audit write fails.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of moderation activity being recorded.
type Action string

const (
	ActionSanctionApplied Action = "sanction_applied"
	ActionSanctionRevoked Action = "sanction_revoked"
	ActionSanctionSweep   Action = "sanction_sweep"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	// ActorID is the user who performed the action. The sweep attributes
	// its summary entry to a designated admin account.
	ActorID uuid.UUID
	// TargetID is the user acted upon, when the action has a single target.
	TargetID  *uuid.UUID
	Action    Action
	Details   map[string]string
	IP        string
	UserAgent string
}

// Store persists audit events. Append must be durable before returning:
// an unaudited moderation action is worse than a rejected one.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByTarget(ctx context.Context, targetID uuid.UUID) ([]Event, error)
}
