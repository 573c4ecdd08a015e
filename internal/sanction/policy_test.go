package sanction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tribune/internal/user"
	dErrors "tribune/pkg/domain-errors"
)

func TestCanIssue(t *testing.T) {
	cases := []struct {
		name    string
		actor   user.Role
		target  user.Role
		allowed bool
	}{
		{"admin sanctions user", user.RoleAdmin, user.RoleUser, true},
		{"admin sanctions moderator", user.RoleAdmin, user.RoleModerator, true},
		{"admin cannot sanction admin", user.RoleAdmin, user.RoleAdmin, false},
		{"moderator sanctions user", user.RoleModerator, user.RoleUser, true},
		{"moderator cannot sanction moderator", user.RoleModerator, user.RoleModerator, false},
		{"moderator cannot sanction admin", user.RoleModerator, user.RoleAdmin, false},
		{"user cannot sanction anyone", user.RoleUser, user.RoleUser, false},
		{"user cannot sanction admin", user.RoleUser, user.RoleAdmin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanIssue(tc.actor, tc.target)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		})
	}
}

func TestUserCannotSanctionTakesPrecedenceOverTargetImmunity(t *testing.T) {
	// A plain user attacking an admin must be told they cannot sanction at
	// all, not that admins are immune.
	err := CanIssue(user.RoleUser, user.RoleAdmin)
	assert.ErrorContains(t, err, "only moderators and administrators")
}

func TestCanRevoke(t *testing.T) {
	assert.NoError(t, CanRevoke(user.RoleAdmin))

	for _, role := range []user.Role{user.RoleModerator, user.RoleUser} {
		err := CanRevoke(role)
		assert.Error(t, err, "role %s", role)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	}
}
