package sanction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tribune/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) seed(userID uuid.UUID, kind Kind, expiresIn time.Duration, createdAt time.Time) *Sanction {
	sn := &Sanction{
		ID:          uuid.New(),
		UserID:      userID,
		ModeratorID: uuid.New(),
		Kind:        kind,
		Reason:      "test",
		StartsAt:    createdAt,
		IsActive:    true,
		Severity:    DefaultSeverity(kind),
		CreatedAt:   createdAt,
	}
	if expiresIn > 0 {
		expiry := createdAt.Add(expiresIn)
		sn.ExpiresAt = &expiry
	}
	require.NoError(s.T(), s.store.Create(context.Background(), sn))
	return sn
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	sn := s.seed(uuid.New(), KindSilence, 24*time.Hour, s.now)

	found, err := s.store.FindByID(context.Background(), sn.ID)
	s.Require().NoError(err)
	s.Equal(sn.ID, found.ID)
	s.Equal(KindSilence, found.Kind)

	_, err = s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListByUser() {
	userID := uuid.New()
	active := s.seed(userID, KindWarning, 0, s.now)
	inactive := s.seed(userID, KindSilence, 0, s.now.Add(time.Minute))
	s.seed(uuid.New(), KindWarning, 0, s.now)

	_, err := s.store.Revoke(context.Background(), inactive.ID, uuid.New(), "lifted", s.now.Add(time.Hour))
	s.Require().NoError(err)

	all, err := s.store.ListByUser(context.Background(), userID, true)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(inactive.ID, all[0].ID, "newest first")

	activeOnly, err := s.store.ListByUser(context.Background(), userID, false)
	s.Require().NoError(err)
	s.Len(activeOnly, 1)
	s.Equal(active.ID, activeOnly[0].ID)
}

func (s *MemoryStoreSuite) TestListActiveByUserExcludesTimeExpired() {
	userID := uuid.New()
	s.seed(userID, KindSilence, time.Hour, s.now)
	fresh := s.seed(userID, KindTempSuspension, 48*time.Hour, s.now)

	// An hour past the silence expiry only the suspension remains in force,
	// even though the silence row has not been swept yet.
	inForce, err := s.store.ListActiveByUser(context.Background(), userID, s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Len(inForce, 1)
	s.Equal(fresh.ID, inForce[0].ID)
}

func (s *MemoryStoreSuite) TestRevoke() {
	sn := s.seed(uuid.New(), KindPermanentBan, 0, s.now)
	adminID := uuid.New()
	at := s.now.Add(time.Hour)

	revoked, err := s.store.Revoke(context.Background(), sn.ID, adminID, "appeal accepted", at)
	s.Require().NoError(err)
	s.False(revoked.IsActive)
	s.Equal("appeal accepted", revoked.RevokeReason)
	s.Require().NotNil(revoked.RevokedBy)
	s.Equal(adminID, *revoked.RevokedBy)
	s.Require().NotNil(revoked.RevokedAt)
	s.Equal(at, *revoked.RevokedAt)

	_, err = s.store.Revoke(context.Background(), sn.ID, adminID, "again", at)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Revoke(context.Background(), uuid.New(), adminID, "missing", at)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeactivateExpired() {
	userID := uuid.New()
	expired := s.seed(userID, KindSilence, time.Hour, s.now)
	s.seed(userID, KindTempSuspension, 72*time.Hour, s.now)
	s.seed(userID, KindPermanentBan, 0, s.now)

	deactivated, err := s.store.DeactivateExpired(context.Background(), s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(deactivated, 1)
	s.Equal(expired.ID, deactivated[0].ID)
	s.False(deactivated[0].IsActive)

	// A second pass finds nothing.
	again, err := s.store.DeactivateExpired(context.Background(), s.now.Add(3*time.Hour))
	s.Require().NoError(err)
	s.Empty(again)
}

func (s *MemoryStoreSuite) TestListFilterAndPagination() {
	moderatorID := uuid.New()
	for i := 0; i < 5; i++ {
		sn := s.seed(uuid.New(), KindWarning, 0, s.now.Add(time.Duration(i)*time.Minute))
		sn.ModeratorID = moderatorID
		s.Require().NoError(s.store.Create(context.Background(), sn))
	}
	s.seed(uuid.New(), KindSilence, time.Hour, s.now)

	kind := KindWarning
	result, err := s.store.List(context.Background(), Filter{Kind: &kind, ModeratorID: &moderatorID}, Page{Limit: 2})
	s.Require().NoError(err)
	s.Equal(5, result.Total)
	s.Len(result.Sanctions, 2)
	s.True(result.Sanctions[0].CreatedAt.After(result.Sanctions[1].CreatedAt), "default sort is created_at desc")

	lastPage, err := s.store.List(context.Background(), Filter{Kind: &kind}, Page{Number: 3, Limit: 2})
	s.Require().NoError(err)
	s.Len(lastPage.Sanctions, 1)

	beyond, err := s.store.List(context.Background(), Filter{Kind: &kind}, Page{Number: 10, Limit: 2})
	s.Require().NoError(err)
	s.Empty(beyond.Sanctions)
	s.Equal(5, beyond.Total)
}

func (s *MemoryStoreSuite) TestStats() {
	moderatorID := uuid.New()
	sn := s.seed(uuid.New(), KindWarning, 0, s.now)
	sn.ModeratorID = moderatorID
	s.Require().NoError(s.store.Create(context.Background(), sn))
	s.seed(uuid.New(), KindSilence, time.Hour, s.now)
	banned := s.seed(uuid.New(), KindPermanentBan, 0, s.now)
	_, err := s.store.Revoke(context.Background(), banned.ID, uuid.New(), "lifted", s.now)
	s.Require().NoError(err)

	stats, err := s.store.Stats(context.Background(), nil)
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(2, stats.Active)
	s.Equal(1, stats.ByKind[KindWarning])
	s.Equal(1, stats.ByKind[KindPermanentBan])
	s.Equal(1, stats.BySeverity[SeverityCritical])

	scoped, err := s.store.Stats(context.Background(), &moderatorID)
	s.Require().NoError(err)
	s.Equal(1, scoped.Total)
}
