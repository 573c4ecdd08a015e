package sanction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tribune/internal/audit"
	"tribune/internal/notify"
	"tribune/internal/platform/metrics"
	"tribune/internal/user"
	"tribune/pkg/attrs"
	dErrors "tribune/pkg/domain-errors"
	"tribune/pkg/platform/sentinel"
	"tribune/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// AuditPublisher records moderation actions. Audit failures during commands
// propagate: an unaudited sanction is worse than a rejected one.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier delivers advisory notifications. Failures are swallowed.
type Notifier interface {
	Dispatch(ctx context.Context, n notify.Notification) error
}

// EnforcementCache mirrors ban/silence markers for hot-path checks.
// Best-effort: errors are logged and never fail a command.
type EnforcementCache interface {
	MarkBanned(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	MarkSilenced(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	ClearBanned(ctx context.Context, userID uuid.UUID) error
	ClearSilenced(ctx context.Context, userID uuid.UUID) error
}

// Service owns the sanction lifecycle commands and queries.
type Service struct {
	sanctions Store
	users     user.Store
	audit     AuditPublisher
	notifier  Notifier
	cache     EnforcementCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithCache(cache EnforcementCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(sanctions Store, users user.Store, auditPublisher AuditPublisher, opts ...Option) (*Service, error) {
	if sanctions == nil {
		return nil, errors.New("sanction store is required")
	}
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if auditPublisher == nil {
		return nil, errors.New("audit publisher is required")
	}

	svc := &Service{
		sanctions: sanctions,
		users:     users,
		audit:     auditPublisher,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ApplyRequest carries everything needed to issue a sanction.
type ApplyRequest struct {
	UserID        uuid.UUID
	ModeratorID   uuid.UUID
	Kind          Kind
	Reason        string
	DurationHours *int
	Severity      *Severity
	Evidence      map[string]any
}

// Validate rejects malformed requests before any state is touched.
func (r *ApplyRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return dErrors.New(dErrors.CodeBadRequest, "target user ID is required")
	}
	if r.ModeratorID == uuid.Nil {
		return dErrors.New(dErrors.CodeBadRequest, "moderator ID is required")
	}
	if !r.Kind.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown sanction kind %q", string(r.Kind))
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}
	if r.DurationHours != nil && *r.DurationHours <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "duration must be positive")
	}
	if r.Severity != nil && !r.Severity.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown severity %q", string(*r.Severity))
	}
	return nil
}

// ApplyResult is the success payload of Apply.
type ApplyResult struct {
	Sanction View   `json:"sanction"`
	Actor    string `json:"actor"`
	Target   string `json:"target"`
	Message  string `json:"message"`
}

// Apply validates actor permissions and target eligibility, persists the
// sanction, projects it onto the target's account flags, records the audit
// entry and fires a best-effort notification.
//
// All validation and permission failures happen before the first write.
func (s *Service) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.users.FindByID(ctx, req.ModeratorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "moderator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve moderator")
	}

	target, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "target user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve target user")
	}

	if err := CanIssue(actor.Role, target.Role); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var expiresAt *time.Time
	if req.DurationHours != nil {
		t := now.Add(time.Duration(*req.DurationHours) * time.Hour)
		expiresAt = &t
	}
	severity := DefaultSeverity(req.Kind)
	if req.Severity != nil {
		severity = *req.Severity
	}

	sanction := &Sanction{
		ID:            uuid.New(),
		UserID:        target.ID,
		ModeratorID:   actor.ID,
		Kind:          req.Kind,
		Reason:        req.Reason,
		DurationHours: req.DurationHours,
		StartsAt:      now,
		ExpiresAt:     expiresAt,
		IsActive:      true,
		Severity:      severity,
		IsAutomatic:   false,
		Evidence:      req.Evidence,
	}

	if err := s.sanctions.Create(ctx, sanction); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist sanction")
	}

	flags := ApplyEffects(target.Flags, sanction, now)
	if err := s.users.UpdateFlags(ctx, target.ID, flags); err != nil {
		// The sanction record exists but enforcement lags it; the sweep's
		// periodic reconciliation heals this window.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account flags")
	}

	err = s.audit.Emit(ctx, s.newEvent(ctx, audit.ActionSanctionApplied, actor.ID, target.ID,
		"target_username", target.Username,
		"kind", string(sanction.Kind),
		"reason", sanction.Reason,
		"severity", string(sanction.Severity),
		"duration", sanction.DurationString(),
	))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit log")
	}

	s.syncCacheOnApply(ctx, sanction, now)
	s.notifyApplied(ctx, target.ID, sanction)

	if s.metrics != nil {
		s.metrics.SanctionsApplied.WithLabelValues(string(sanction.Kind)).Inc()
	}
	s.logger.InfoContext(ctx, "sanction applied",
		"sanction_id", sanction.ID.String(),
		"user_id", target.ID.String(),
		"moderator_id", actor.ID.String(),
		"kind", string(sanction.Kind),
		"severity", string(sanction.Severity),
	)

	return &ApplyResult{
		Sanction: NewView(*sanction, now),
		Actor:    actor.Username,
		Target:   target.Username,
		Message:  fmt.Sprintf("%s issued to %s (%s)", sanction.Kind, target.Username, sanction.DurationString()),
	}, nil
}

// RevokeRequest identifies a sanction to lift and why.
type RevokeRequest struct {
	SanctionID uuid.UUID
	ActorID    uuid.UUID
	Reason     string
}

func (r *RevokeRequest) Validate() error {
	if r.SanctionID == uuid.Nil {
		return dErrors.New(dErrors.CodeBadRequest, "sanction ID is required")
	}
	if r.ActorID == uuid.Nil {
		return dErrors.New(dErrors.CodeBadRequest, "actor ID is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "revoke reason is required")
	}
	return nil
}

// RevokeResult is the success payload of Revoke.
type RevokeResult struct {
	Sanction View   `json:"sanction"`
	Actor    string `json:"actor"`
	Message  string `json:"message"`
}

// Revoke lifts a sanction and re-derives the target's account flags from
// their remaining active set, so a flag another active sanction still
// justifies is never cleared.
func (s *Service) Revoke(ctx context.Context, req *RevokeRequest) (*RevokeResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.users.FindByID(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "actor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve actor")
	}
	if err := CanRevoke(actor.Role); err != nil {
		return nil, err
	}

	existing, err := s.sanctions.FindByID(ctx, req.SanctionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "sanction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve sanction")
	}
	if !existing.IsActive {
		return nil, dErrors.New(dErrors.CodeConflict, "sanction is not active")
	}

	// Defensive: the target should always exist while its sanction does.
	target, err := s.users.FindByID(ctx, existing.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "target user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve target user")
	}

	now := requestcontext.Now(ctx)
	revoked, err := s.sanctions.Revoke(ctx, req.SanctionID, actor.ID, req.Reason, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "sanction not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeConflict, "sanction is not active")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke sanction")
	}

	if err := s.reconcileUser(ctx, target, now); err != nil {
		return nil, err
	}

	err = s.audit.Emit(ctx, s.newEvent(ctx, audit.ActionSanctionRevoked, actor.ID, target.ID,
		"target_username", target.Username,
		"kind", string(revoked.Kind),
		"revoke_reason", req.Reason,
	))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit log")
	}

	s.notifyRevoked(ctx, target.ID, revoked)

	if s.metrics != nil {
		s.metrics.SanctionsRevoked.WithLabelValues(string(revoked.Kind)).Inc()
	}
	s.logger.InfoContext(ctx, "sanction revoked",
		"sanction_id", revoked.ID.String(),
		"user_id", target.ID.String(),
		"actor_id", actor.ID.String(),
		"kind", string(revoked.Kind),
	)

	return &RevokeResult{
		Sanction: NewView(*revoked, now),
		Actor:    actor.Username,
		Message:  fmt.Sprintf("%s on %s revoked", revoked.Kind, target.Username),
	}, nil
}

// reconcileUser recomputes the user's flags from their currently active
// sanctions and persists the result, then aligns the enforcement cache.
func (s *Service) reconcileUser(ctx context.Context, target *user.User, now time.Time) error {
	active, err := s.sanctions.ListActiveByUser(ctx, target.ID, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active sanctions")
	}
	flags := ReconcileFromActiveSet(target.Flags, active)
	if err := s.users.UpdateFlags(ctx, target.ID, flags); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account flags")
	}
	s.syncCacheOnReconcile(ctx, target.ID, flags)
	return nil
}

func (s *Service) newEvent(ctx context.Context, action audit.Action, actorID, targetID uuid.UUID, kv ...any) audit.Event {
	target := targetID
	return audit.Event{
		Action:    action,
		ActorID:   actorID,
		TargetID:  &target,
		Details:   attrs.ToMap(kv),
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
}

func (s *Service) syncCacheOnApply(ctx context.Context, sn *Sanction, now time.Time) {
	if s.cache == nil {
		return
	}
	var ttl time.Duration
	if sn.ExpiresAt != nil {
		ttl = sn.ExpiresAt.Sub(now)
	}
	var err error
	switch {
	case sn.Kind.IsBan():
		err = s.cache.MarkBanned(ctx, sn.UserID, ttl)
	case sn.Kind == KindSilence:
		err = s.cache.MarkSilenced(ctx, sn.UserID, ttl)
	default:
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "enforcement cache update failed",
			"error", err,
			"user_id", sn.UserID.String(),
		)
	}
}

func (s *Service) syncCacheOnReconcile(ctx context.Context, userID uuid.UUID, flags user.ModerationFlags) {
	if s.cache == nil {
		return
	}
	if !flags.IsBanned {
		if err := s.cache.ClearBanned(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "enforcement cache clear failed", "error", err, "user_id", userID.String())
		}
	}
	if !flags.IsSilenced {
		if err := s.cache.ClearSilenced(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "enforcement cache clear failed", "error", err, "user_id", userID.String())
		}
	}
}

func (s *Service) notifyApplied(ctx context.Context, userID uuid.UUID, sn *Sanction) {
	// Plain warnings are visible through the warning counter; everything
	// else notifies the target. Advisory channel: failures are ignored.
	if s.notifier == nil || sn.Kind == KindWarning {
		return
	}
	content := fmt.Sprintf("A %s has been applied to your account: %s (%s)",
		sn.Kind, sn.Reason, sn.DurationString())
	related := map[string]string{
		"sanction_id": sn.ID.String(),
		"kind":        string(sn.Kind),
	}
	if sn.ExpiresAt != nil {
		related["expires_at"] = sn.ExpiresAt.Format(time.RFC3339)
	}
	if err := s.notifier.Dispatch(ctx, notify.Notification{
		UserID:      userID,
		Type:        notify.TypeSanctionApplied,
		Content:     content,
		RelatedData: related,
	}); err != nil {
		s.logger.WarnContext(ctx, "sanction notification failed", "error", err, "user_id", userID.String())
	}
}

func (s *Service) notifyRevoked(ctx context.Context, userID uuid.UUID, sn *Sanction) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, notify.Notification{
		UserID:  userID,
		Type:    notify.TypeSanctionRevoked,
		Content: fmt.Sprintf("The %s on your account has been lifted: %s", sn.Kind, sn.RevokeReason),
		RelatedData: map[string]string{
			"sanction_id": sn.ID.String(),
			"kind":        string(sn.Kind),
		},
	}); err != nil {
		s.logger.WarnContext(ctx, "sanction notification failed", "error", err, "user_id", userID.String())
	}
}
