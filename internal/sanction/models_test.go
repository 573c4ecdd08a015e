package sanction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSeverity(t *testing.T) {
	cases := map[Kind]Severity{
		KindWarning:        SeverityLow,
		KindSilence:        SeverityMedium,
		KindRestriction:    SeverityMedium,
		KindTempSuspension: SeverityHigh,
		KindPermanentBan:   SeverityCritical,
		KindIPBan:          SeverityCritical,
	}
	for kind, want := range cases {
		assert.Equal(t, want, DefaultSeverity(kind), "kind %s", kind)
	}
}

func TestKindValid(t *testing.T) {
	for _, kind := range []Kind{KindWarning, KindSilence, KindRestriction, KindTempSuspension, KindPermanentBan, KindIPBan} {
		assert.True(t, kind.Valid(), "kind %s", kind)
	}
	assert.False(t, Kind("shadowban").Valid())
	assert.False(t, Kind("").Valid())
}

func TestDurationString(t *testing.T) {
	hours := func(h int) *int { return &h }

	cases := []struct {
		duration *int
		want     string
	}{
		{nil, "permanent"},
		{hours(1), "1 hour"},
		{hours(5), "5 hours"},
		{hours(24), "1 day"},
		{hours(72), "3 days"},
		{hours(25), "25 hours"},
	}
	for _, tc := range cases {
		s := Sanction{DurationHours: tc.duration}
		assert.Equal(t, tc.want, s.DurationString())
	}
}

func TestExpiryBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)
	s := Sanction{IsActive: true, ExpiresAt: &expiry}

	assert.True(t, s.IsInForceAt(now))
	assert.True(t, s.IsInForceAt(expiry.Add(-time.Second)))
	// The expiry instant itself counts as expired.
	assert.False(t, s.IsInForceAt(expiry))
	assert.True(t, s.IsExpiredAt(expiry))

	permanent := Sanction{IsActive: true}
	assert.True(t, permanent.IsPermanent())
	assert.True(t, permanent.IsInForceAt(now.AddDate(10, 0, 0)))

	inactive := Sanction{IsActive: false, ExpiresAt: &expiry}
	assert.False(t, inactive.IsInForceAt(now))
}

func TestRemainingAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := now.Add(49*time.Hour + 30*time.Minute)
	s := Sanction{IsActive: true, ExpiresAt: &expiry}

	rem := s.RemainingAt(now)
	if assert.NotNil(t, rem) {
		assert.Equal(t, 2, rem.Days)
		assert.Equal(t, 1, rem.Hours)
		assert.Equal(t, 30, rem.Minutes)
	}

	permanent := Sanction{IsActive: true}
	assert.Nil(t, permanent.RemainingAt(now), "permanent sanctions have no remaining breakdown")
	assert.Nil(t, s.RemainingAt(expiry), "expired sanctions have no remaining breakdown")
}

func TestPageNormalize(t *testing.T) {
	p := Page{}.Normalize()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, SortCreatedAt, p.Sort)
	assert.True(t, p.Desc)
	assert.Equal(t, 0, p.Offset())

	p = Page{Number: 3, Limit: 500, Sort: SortSeverity}.Normalize()
	assert.Equal(t, MaxPageSize, p.Limit)
	assert.Equal(t, SortSeverity, p.Sort)
	assert.Equal(t, 200, p.Offset())
}
