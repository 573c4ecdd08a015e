// Package handler wires the moderation endpoints to the sanction service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tribune/internal/platform/middleware"
	"tribune/internal/sanction"
	dErrors "tribune/pkg/domain-errors"
	"tribune/pkg/platform/httputil"
)

// Service defines the sanction operations the handler exposes.
type Service interface {
	Apply(ctx context.Context, req *sanction.ApplyRequest) (*sanction.ApplyResult, error)
	Revoke(ctx context.Context, req *sanction.RevokeRequest) (*sanction.RevokeResult, error)
	Get(ctx context.Context, id uuid.UUID) (*sanction.View, error)
	List(ctx context.Context, filter sanction.Filter, page sanction.Page) (*sanction.ListResult, error)
	UserHistory(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]sanction.View, error)
	Stats(ctx context.Context, moderatorID *uuid.UUID) (*sanction.Stats, error)
}

// Handler serves the /moderation endpoint group.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the moderation endpoints on the router. The caller is
// expected to have applied authentication middleware to r already.
func (h *Handler) Register(r chi.Router) {
	r.Post("/moderation/sanctions", h.HandleApply)
	r.Post("/moderation/sanctions/{id}/revoke", h.HandleRevoke)
	r.Get("/moderation/sanctions", h.HandleList)
	r.Get("/moderation/sanctions/{id}", h.HandleGet)
	r.Get("/moderation/users/{userID}/sanctions", h.HandleUserHistory)
	r.Get("/moderation/stats", h.HandleStats)
}

// ApplyRequest is the wire shape for issuing a sanction. The acting
// moderator is taken from the authenticated session, never the body.
type ApplyRequest struct {
	UserID        string         `json:"user_id"`
	Kind          string         `json:"kind"`
	Reason        string         `json:"reason"`
	DurationHours *int           `json:"duration_hours,omitempty"`
	Severity      *string        `json:"severity,omitempty"`
	Evidence      map[string]any `json:"evidence,omitempty"`
}

// HandleApply handles POST /moderation/sanctions.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	actorID, ok := authenticatedID(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.Decode[ApplyRequest](w, r)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user_id"))
		return
	}

	domainReq := &sanction.ApplyRequest{
		UserID:        targetID,
		ModeratorID:   actorID,
		Kind:          sanction.Kind(req.Kind),
		Reason:        req.Reason,
		DurationHours: req.DurationHours,
		Evidence:      req.Evidence,
	}
	if req.Severity != nil {
		sev := sanction.Severity(*req.Severity)
		domainReq.Severity = &sev
	}

	result, err := h.service.Apply(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "sanction apply failed",
			"request_id", middleware.GetRequestID(ctx),
			"moderator_id", actorID.String(),
			"user_id", req.UserID,
			"kind", req.Kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "sanction applied",
		"request_id", middleware.GetRequestID(ctx),
		"sanction_id", result.Sanction.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// RevokeRequest is the wire shape for lifting a sanction.
type RevokeRequest struct {
	Reason string `json:"reason"`
}

// HandleRevoke handles POST /moderation/sanctions/{id}/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := authenticatedID(w, ctx)
	if !ok {
		return
	}
	sanctionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sanction ID"))
		return
	}
	req, ok := httputil.Decode[RevokeRequest](w, r)
	if !ok {
		return
	}

	result, err := h.service.Revoke(ctx, &sanction.RevokeRequest{
		SanctionID: sanctionID,
		ActorID:    actorID,
		Reason:     req.Reason,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "sanction revoke failed",
			"request_id", middleware.GetRequestID(ctx),
			"actor_id", actorID.String(),
			"sanction_id", sanctionID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGet handles GET /moderation/sanctions/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := authenticatedID(w, ctx); !ok {
		return
	}
	sanctionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sanction ID"))
		return
	}

	view, err := h.service.Get(ctx, sanctionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleList handles GET /moderation/sanctions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := authenticatedID(w, ctx); !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.List(ctx, filter, parsePage(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "sanction list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleUserHistory handles GET /moderation/users/{userID}/sanctions.
func (h *Handler) HandleUserHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := authenticatedID(w, ctx); !ok {
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user ID"))
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	views, err := h.service.UserHistory(ctx, userID, includeInactive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":   userID,
		"sanctions": views,
		"total":     len(views),
	})
}

// HandleStats handles GET /moderation/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := authenticatedID(w, ctx); !ok {
		return
	}
	var moderatorID *uuid.UUID
	if raw := r.URL.Query().Get("moderator_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid moderator_id"))
			return
		}
		moderatorID = &id
	}

	stats, err := h.service.Stats(ctx, moderatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// authenticatedID extracts the acting user from the auth middleware's
// context, writing an unauthorized response when absent or malformed.
func authenticatedID(w http.ResponseWriter, ctx context.Context) (uuid.UUID, bool) {
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid authentication subject"))
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(r *http.Request) (sanction.Filter, error) {
	q := r.URL.Query()
	var filter sanction.Filter

	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid user_id")
		}
		filter.UserID = &id
	}
	if raw := q.Get("moderator_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid moderator_id")
		}
		filter.ModeratorID = &id
	}
	if raw := q.Get("kind"); raw != "" {
		kind := sanction.Kind(raw)
		if !kind.Valid() {
			return filter, dErrors.Newf(dErrors.CodeBadRequest, "unknown sanction kind %q", raw)
		}
		filter.Kind = &kind
	}
	if raw := q.Get("severity"); raw != "" {
		sev := sanction.Severity(raw)
		if !sev.Valid() {
			return filter, dErrors.Newf(dErrors.CodeBadRequest, "unknown severity %q", raw)
		}
		filter.Severity = &sev
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid active flag")
		}
		filter.IsActive = &active
	}
	return filter, nil
}

func parsePage(r *http.Request) sanction.Page {
	q := r.URL.Query()
	page := sanction.Page{
		Sort: sanction.SortField(q.Get("sort")),
		Desc: q.Get("order") != "asc",
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Number = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		page.Limit = n
	}
	return page
}
