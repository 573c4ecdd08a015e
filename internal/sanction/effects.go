package sanction

import (
	"time"

	"tribune/internal/user"
)

// Account flag effects are modeled as pure functions over
// user.ModerationFlags so they stay independently testable and the same
// derivation serves commands and the expiration sweep.

// ApplyEffects projects a newly issued sanction onto the user's flags.
func ApplyEffects(flags user.ModerationFlags, s *Sanction, now time.Time) user.ModerationFlags {
	switch s.Kind {
	case KindWarning:
		flags.WarningsCount++
		t := now
		flags.LastWarningAt = &t
	case KindSilence:
		flags.IsSilenced = true
		flags.SilencedUntil = s.ExpiresAt
	case KindTempSuspension, KindPermanentBan:
		flags.IsBanned = true
		startsAt := s.StartsAt
		flags.BannedAt = &startsAt
		moderatorID := s.ModeratorID
		flags.BannedBy = &moderatorID
		flags.BanReason = s.Reason
	case KindRestriction, KindIPBan:
		// No flag projection: recorded in sanction history only, reserved
		// for future enforcement points.
	}
	return flags
}

// ReconcileFromActiveSet recomputes the ban and silence flags from the
// user's full set of currently active sanctions. This must be a full
// recomputation rather than a single-sanction toggle: a user may be covered
// by several overlapping sanctions of the same category, and removing one
// must not clear a flag another active sanction still justifies.
//
// Warning counters are deliberately left untouched; they are permanent.
func ReconcileFromActiveSet(flags user.ModerationFlags, active []*Sanction) user.ModerationFlags {
	var ban *Sanction
	var latestSilence *time.Time
	silenced := false
	permanentSilence := false

	for _, s := range active {
		if s.Kind.IsBan() && ban == nil {
			ban = s
		}
		if s.Kind == KindSilence {
			silenced = true
			if s.ExpiresAt == nil {
				permanentSilence = true
			} else if latestSilence == nil || s.ExpiresAt.After(*latestSilence) {
				latestSilence = s.ExpiresAt
			}
		}
	}

	if ban != nil {
		flags.IsBanned = true
		startsAt := ban.StartsAt
		flags.BannedAt = &startsAt
		moderatorID := ban.ModeratorID
		flags.BannedBy = &moderatorID
		flags.BanReason = ban.Reason
	} else {
		flags.IsBanned = false
		flags.BannedAt = nil
		flags.BannedBy = nil
		flags.BanReason = ""
	}

	if silenced {
		flags.IsSilenced = true
		if permanentSilence {
			flags.SilencedUntil = nil
		} else {
			flags.SilencedUntil = latestSilence
		}
	} else {
		flags.IsSilenced = false
		flags.SilencedUntil = nil
	}

	return flags
}
