package user

import (
	"context"

	"github.com/google/uuid"
)

// Store is the account lookup/update contract the moderation core consumes.
// Implementations return sentinel.ErrNotFound for absent users.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByRole(ctx context.Context, role Role) ([]*User, error)
	// UpdateFlags replaces the moderation flag projection for the user.
	UpdateFlags(ctx context.Context, id uuid.UUID, flags ModerationFlags) error
	Save(ctx context.Context, u *User) error
}
