package sanction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tribune/internal/user"
)

func TestApplyEffects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	moderatorID := uuid.New()

	t.Run("warning increments counter and stamps time", func(t *testing.T) {
		flags := user.ModerationFlags{WarningsCount: 2}
		got := ApplyEffects(flags, &Sanction{Kind: KindWarning}, now)

		assert.Equal(t, 3, got.WarningsCount)
		if assert.NotNil(t, got.LastWarningAt) {
			assert.Equal(t, now, *got.LastWarningAt)
		}
		assert.False(t, got.IsBanned)
		assert.False(t, got.IsSilenced)
	})

	t.Run("silence sets flag and expiry", func(t *testing.T) {
		expiry := now.Add(48 * time.Hour)
		got := ApplyEffects(user.ModerationFlags{}, &Sanction{Kind: KindSilence, ExpiresAt: &expiry}, now)

		assert.True(t, got.IsSilenced)
		if assert.NotNil(t, got.SilencedUntil) {
			assert.Equal(t, expiry, *got.SilencedUntil)
		}
	})

	t.Run("permanent silence has nil until", func(t *testing.T) {
		got := ApplyEffects(user.ModerationFlags{}, &Sanction{Kind: KindSilence}, now)
		assert.True(t, got.IsSilenced)
		assert.Nil(t, got.SilencedUntil)
	})

	t.Run("temp suspension sets ban fields", func(t *testing.T) {
		s := &Sanction{
			Kind:        KindTempSuspension,
			ModeratorID: moderatorID,
			Reason:      "spamming",
			StartsAt:    now,
		}
		got := ApplyEffects(user.ModerationFlags{}, s, now)

		assert.True(t, got.IsBanned)
		assert.Equal(t, "spamming", got.BanReason)
		if assert.NotNil(t, got.BannedBy) {
			assert.Equal(t, moderatorID, *got.BannedBy)
		}
		if assert.NotNil(t, got.BannedAt) {
			assert.Equal(t, now, *got.BannedAt)
		}
	})

	t.Run("permanent ban sets ban fields", func(t *testing.T) {
		got := ApplyEffects(user.ModerationFlags{}, &Sanction{Kind: KindPermanentBan, StartsAt: now}, now)
		assert.True(t, got.IsBanned)
	})

	t.Run("restriction and ip ban leave flags alone", func(t *testing.T) {
		for _, kind := range []Kind{KindRestriction, KindIPBan} {
			got := ApplyEffects(user.ModerationFlags{}, &Sanction{Kind: kind}, now)
			assert.Equal(t, user.ModerationFlags{}, got, "kind %s", kind)
		}
	})
}

func TestReconcileFromActiveSet(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	bannedFlags := func() user.ModerationFlags {
		at := now.Add(-time.Hour)
		by := uuid.New()
		return user.ModerationFlags{
			IsBanned:  true,
			BannedAt:  &at,
			BannedBy:  &by,
			BanReason: "earlier ban",
		}
	}

	t.Run("empty set clears ban and silence", func(t *testing.T) {
		until := now.Add(time.Hour)
		flags := bannedFlags()
		flags.IsSilenced = true
		flags.SilencedUntil = &until
		flags.WarningsCount = 4

		got := ReconcileFromActiveSet(flags, nil)

		assert.False(t, got.IsBanned)
		assert.Nil(t, got.BannedAt)
		assert.Nil(t, got.BannedBy)
		assert.Empty(t, got.BanReason)
		assert.False(t, got.IsSilenced)
		assert.Nil(t, got.SilencedUntil)
		assert.Equal(t, 4, got.WarningsCount, "warning counters survive reconciliation")
	})

	t.Run("remaining ban keeps ban flags", func(t *testing.T) {
		remaining := &Sanction{
			Kind:        KindPermanentBan,
			ModeratorID: uuid.New(),
			Reason:      "ban evasion",
			StartsAt:    now,
		}
		got := ReconcileFromActiveSet(bannedFlags(), []*Sanction{remaining})

		assert.True(t, got.IsBanned)
		assert.Equal(t, "ban evasion", got.BanReason)
		if assert.NotNil(t, got.BannedBy) {
			assert.Equal(t, remaining.ModeratorID, *got.BannedBy)
		}
	})

	t.Run("overlapping silences keep the latest expiry", func(t *testing.T) {
		early := now.Add(24 * time.Hour)
		late := now.Add(72 * time.Hour)
		active := []*Sanction{
			{Kind: KindSilence, ExpiresAt: &early},
			{Kind: KindSilence, ExpiresAt: &late},
		}
		got := ReconcileFromActiveSet(user.ModerationFlags{}, active)

		assert.True(t, got.IsSilenced)
		if assert.NotNil(t, got.SilencedUntil) {
			assert.Equal(t, late, *got.SilencedUntil)
		}
	})

	t.Run("permanent silence dominates timed ones", func(t *testing.T) {
		timed := now.Add(24 * time.Hour)
		active := []*Sanction{
			{Kind: KindSilence, ExpiresAt: &timed},
			{Kind: KindSilence},
		}
		got := ReconcileFromActiveSet(user.ModerationFlags{}, active)

		assert.True(t, got.IsSilenced)
		assert.Nil(t, got.SilencedUntil)
	})

	t.Run("restrictions do not produce flags", func(t *testing.T) {
		got := ReconcileFromActiveSet(bannedFlags(), []*Sanction{{Kind: KindRestriction}})
		assert.False(t, got.IsBanned)
	})

	t.Run("mixed set derives both categories", func(t *testing.T) {
		until := now.Add(6 * time.Hour)
		active := []*Sanction{
			{Kind: KindSilence, ExpiresAt: &until},
			{Kind: KindTempSuspension, ModeratorID: uuid.New(), Reason: "cooling off", StartsAt: now},
		}
		got := ReconcileFromActiveSet(user.ModerationFlags{}, active)

		assert.True(t, got.IsBanned)
		assert.Equal(t, "cooling off", got.BanReason)
		assert.True(t, got.IsSilenced)
	})
}
