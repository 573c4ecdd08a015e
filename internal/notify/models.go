// Package notify delivers advisory notifications to users. The channel is
// best-effort by contract: callers never fail an operation because a
// notification could not be delivered.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type categorizes a notification for client rendering.
type Type string

const (
	TypeSanctionApplied Type = "sanction_applied"
	TypeSanctionRevoked Type = "sanction_revoked"
)

// Notification is a message destined for one user.
type Notification struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Type        Type              `json:"type"`
	Content     string            `json:"content"`
	RelatedData map[string]string `json:"related_data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

// Store persists notifications for later retrieval by the user.
type Store interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
}
