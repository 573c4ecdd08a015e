//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tribune/internal/platform/postgres"
	"tribune/internal/sanction"
	sanctionpg "tribune/internal/sanction/store/postgres"
	"tribune/internal/user"
	userpg "tribune/internal/user/store/postgres"
	"tribune/pkg/platform/sentinel"
	"tribune/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *sanctionpg.Store
	users *userpg.Store

	moderator uuid.UUID
	member    uuid.UUID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.store = sanctionpg.New(s.pg.DB)
	s.users = userpg.New(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateTables(ctx, "sanctions", "users"))

	s.moderator = s.seedUser("mod", user.RoleModerator)
	s.member = s.seedUser("alice", user.RoleUser)
}

func (s *PostgresStoreSuite) seedUser(username string, role user.Role) uuid.UUID {
	u := &user.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	s.Require().NoError(s.users.Save(context.Background(), u))
	return u.ID
}

func (s *PostgresStoreSuite) newSanction(kind sanction.Kind, expiresIn time.Duration) *sanction.Sanction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	sn := &sanction.Sanction{
		ID:          uuid.New(),
		UserID:      s.member,
		ModeratorID: s.moderator,
		Kind:        kind,
		Reason:      "integration test",
		StartsAt:    now,
		IsActive:    true,
		Severity:    sanction.DefaultSeverity(kind),
		Evidence:    map[string]any{"post_id": "12345"},
	}
	if expiresIn != 0 {
		expiry := now.Add(expiresIn)
		sn.ExpiresAt = &expiry
	}
	return sn
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	hours := 48
	sn := s.newSanction(sanction.KindSilence, 48*time.Hour)
	sn.DurationHours = &hours
	s.Require().NoError(s.store.Create(ctx, sn))

	found, err := s.store.FindByID(ctx, sn.ID)
	s.Require().NoError(err)
	s.Equal(sn.ID, found.ID)
	s.Equal(sanction.KindSilence, found.Kind)
	s.Equal(sanction.SeverityMedium, found.Severity)
	s.Require().NotNil(found.DurationHours)
	s.Equal(48, *found.DurationHours)
	s.Require().NotNil(found.ExpiresAt)
	s.True(found.ExpiresAt.Equal(*sn.ExpiresAt))
	s.Equal("12345", found.Evidence["post_id"])
	s.True(found.IsActive)
	s.Nil(found.RevokedAt)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRevokeStates() {
	ctx := context.Background()
	sn := s.newSanction(sanction.KindPermanentBan, 0)
	s.Require().NoError(s.store.Create(ctx, sn))

	adminID := s.seedUser("root", user.RoleAdmin)
	at := time.Now().UTC().Truncate(time.Microsecond)

	revoked, err := s.store.Revoke(ctx, sn.ID, adminID, "appeal accepted", at)
	s.Require().NoError(err)
	s.False(revoked.IsActive)
	s.Equal("appeal accepted", revoked.RevokeReason)
	s.Require().NotNil(revoked.RevokedBy)
	s.Equal(adminID, *revoked.RevokedBy)

	_, err = s.store.Revoke(ctx, sn.ID, adminID, "again", at)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Revoke(ctx, uuid.New(), adminID, "missing", at)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeactivateExpired() {
	ctx := context.Background()
	expired := s.newSanction(sanction.KindSilence, -time.Hour)
	s.Require().NoError(s.store.Create(ctx, expired))
	s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindTempSuspension, 72*time.Hour)))
	s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindPermanentBan, 0)))

	deactivated, err := s.store.DeactivateExpired(ctx, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().Len(deactivated, 1)
	s.Equal(expired.ID, deactivated[0].ID)
	s.False(deactivated[0].IsActive)

	active, err := s.store.ListActiveByUser(ctx, s.member, time.Now().UTC())
	s.Require().NoError(err)
	s.Len(active, 2)
}

func (s *PostgresStoreSuite) TestListFilterSortPaginate() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindWarning, 0)))
	}
	s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindSilence, time.Hour)))

	kind := sanction.KindWarning
	page1, err := s.store.List(ctx, sanction.Filter{Kind: &kind}, sanction.Page{Limit: 2})
	s.Require().NoError(err)
	s.Equal(5, page1.Total)
	s.Len(page1.Sanctions, 2)

	page3, err := s.store.List(ctx, sanction.Filter{Kind: &kind}, sanction.Page{Number: 3, Limit: 2})
	s.Require().NoError(err)
	s.Len(page3.Sanctions, 1)

	bySeverity, err := s.store.List(ctx, sanction.Filter{}, sanction.Page{Limit: 10, Sort: sanction.SortSeverity, Desc: false})
	s.Require().NoError(err)
	s.Len(bySeverity.Sanctions, 6)
}

func (s *PostgresStoreSuite) TestStats() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindWarning, 0)))
	s.Require().NoError(s.store.Create(ctx, s.newSanction(sanction.KindSilence, time.Hour)))
	banned := s.newSanction(sanction.KindPermanentBan, 0)
	s.Require().NoError(s.store.Create(ctx, banned))
	_, err := s.store.Revoke(ctx, banned.ID, s.moderator, "lifted", time.Now().UTC())
	s.Require().NoError(err)

	stats, err := s.store.Stats(ctx, nil)
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(2, stats.Active)
	s.Equal(1, stats.ByKind[sanction.KindPermanentBan])
	s.Equal(1, stats.BySeverity[sanction.SeverityCritical])

	other := uuid.New()
	scoped, err := s.store.Stats(ctx, &other)
	s.Require().NoError(err)
	s.Zero(scoped.Total)
}
