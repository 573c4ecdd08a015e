// Package sweeper deactivates time-expired sanctions on a fixed interval
// and reconciles the affected users' account flags.
package sweeper

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tribune/internal/audit"
	"tribune/internal/platform/metrics"
	"tribune/internal/sanction"
	"tribune/internal/user"
)

// Result summarizes one sweep run.
type Result struct {
	Processed    int
	UsersUpdated int
	Errors       int
}

// Sweeper periodically flips expired sanctions inactive and re-derives the
// account flags of every user a deactivation touched.
type Sweeper struct {
	sanctions sanction.Store
	users     user.Store
	audit     sanction.AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	interval     time.Duration
	initialDelay time.Duration

	running atomic.Bool

	// systemActorID caches the admin the sweep attributes its audit entries
	// to. Reset on audit failure so the next run re-resolves it.
	systemActorID atomic.Pointer[uuid.UUID]
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(s *Sweeper) {
		s.initialDelay = d
	}
}

func New(sanctions sanction.Store, users user.Store, auditPublisher sanction.AuditPublisher, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		sanctions: sanctions,
		users:     users,
		audit:     auditPublisher,
		logger:    slog.Default(),
		interval:  interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on the configured interval until ctx is cancelled. The first
// run waits for the initial delay so startup traffic settles first.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.initialDelay > 0 {
		select {
		case <-time.After(s.initialDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sweep is the guarded entry point: a run still in progress makes the tick
// a no-op rather than a concurrent sweep.
func (s *Sweeper) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "expiration sweep still running, skipping tick")
		if s.metrics != nil {
			s.metrics.SweepSkipped.Inc()
		}
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	result, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "expiration sweep failed", "error", err)
		if s.metrics != nil {
			s.metrics.SweepErrors.Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveSweep(result.Processed, result.Errors, float64(time.Since(start).Milliseconds()))
	}
	if result.Processed > 0 || result.Errors > 0 {
		s.logger.InfoContext(ctx, "expiration sweep finished",
			"expired", result.Processed,
			"users_updated", result.UsersUpdated,
			"errors", result.Errors,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RunOnce performs a single sweep pass. A failure for one user never stops
// the pass: it is counted and the remaining users are still reconciled.
func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	now := time.Now().UTC()

	expired, err := s.sanctions.DeactivateExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	result := &Result{Processed: len(expired)}
	if len(expired) == 0 {
		return result, nil
	}

	// Only sanctions that project onto account flags require reconciling
	// the user record; an expired warning changes nothing.
	touched := make(map[uuid.UUID]struct{})
	for _, sn := range expired {
		if sn.Kind.ProjectsFlags() {
			touched[sn.UserID] = struct{}{}
		}
	}

	for userID := range touched {
		if err := s.reconcile(ctx, userID, now); err != nil {
			result.Errors++
			s.logger.ErrorContext(ctx, "sweep reconciliation failed",
				"error", err,
				"user_id", userID.String(),
			)
			continue
		}
		result.UsersUpdated++
	}

	s.recordSummary(ctx, result)
	return result, nil
}

// reconcile re-derives one user's flags from their remaining active set.
func (s *Sweeper) reconcile(ctx context.Context, userID uuid.UUID, now time.Time) error {
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	active, err := s.sanctions.ListActiveByUser(ctx, userID, now)
	if err != nil {
		return err
	}
	flags := sanction.ReconcileFromActiveSet(target.Flags, active)
	return s.users.UpdateFlags(ctx, userID, flags)
}

// recordSummary writes one audit entry for the whole pass, attributed to a
// system actor. No admin account means no attribution is possible, so the
// entry is skipped rather than forged.
func (s *Sweeper) recordSummary(ctx context.Context, result *Result) {
	actorID, ok := s.systemActor(ctx)
	if !ok {
		s.logger.WarnContext(ctx, "no admin account available, skipping sweep audit entry")
		return
	}

	err := s.audit.Emit(ctx, audit.Event{
		Action:  audit.ActionSanctionSweep,
		ActorID: actorID,
		Details: map[string]string{
			"expired":       strconv.Itoa(result.Processed),
			"users_updated": strconv.Itoa(result.UsersUpdated),
			"errors":        strconv.Itoa(result.Errors),
		},
	})
	if err != nil {
		// Drop the cached actor too: a stale admin ID is one way Emit fails.
		s.systemActorID.Store(nil)
		s.logger.ErrorContext(ctx, "failed to record sweep audit entry", "error", err)
	}
}

// systemActor returns the cached admin ID, resolving it on first use.
func (s *Sweeper) systemActor(ctx context.Context) (uuid.UUID, bool) {
	if cached := s.systemActorID.Load(); cached != nil {
		return *cached, true
	}
	admins, err := s.users.FindByRole(ctx, user.RoleAdmin)
	if err != nil || len(admins) == 0 {
		return uuid.Nil, false
	}
	id := admins[0].ID
	s.systemActorID.Store(&id)
	return id, true
}
