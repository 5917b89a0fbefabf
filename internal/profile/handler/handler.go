// Package handler is the thin HTTP layer over the profile service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"profiling/internal/policy"
	"profiling/internal/profile"
	authmw "profiling/pkg/platform/middleware/auth"
	"profiling/pkg/requestcontext"
)

// ReasonHeader carries the machine-readable reason for 412 and 503 rejections,
// distinguishing "the thing you asked about doesn't exist" from "try again later".
const ReasonHeader = "reason"

// Handler handles the event logging and search endpoints.
type Handler struct {
	logger    *slog.Logger
	profiles  *profile.Service
	policy    policy.Table
	validator authmw.TokenValidator
}

func New(profiles *profile.Service, table policy.Table, validator authmw.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		profiles:  profiles,
		policy:    table,
		validator: validator,
	}
}

// Register wires the profile routes. Each route is guarded by the policy
// table, evaluated against the resolved principal before dispatch.
func (h *Handler) Register(r chi.Router) {
	r.Method(http.MethodPost, "/", h.guard("logEvent", h.handleLogEvent))
	r.Method(http.MethodGet, "/user/{userId}", h.guard("getUserEvents", h.handleGetUserEvents))
	r.Method(http.MethodGet, "/event/{eventName}", h.guard("searchEvents", h.handleSearchEvents))
	r.Method(http.MethodGet, "/location/{location}", h.guard("searchLocations", h.handleSearchLocations))
	r.Method(http.MethodGet, "/partner/{partner}", h.guard("searchPartners", h.handleSearchPartners))
}

// guard applies the policy table rule for a route. Ungated routes dispatch
// directly; gated routes require an authenticated principal holding one of the
// listed roles.
func (h *Handler) guard(route string, next http.HandlerFunc) http.Handler {
	roles, gated := h.policy.RolesFor(route)
	if !gated {
		return next
	}
	return authmw.RequireAuth(h.validator, h.logger)(authmw.RequireRoles(roles, h.logger)(next))
}

func (h *Handler) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event profile.UserEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.WarnContext(ctx, "invalid event body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.profiles.LogEvent(ctx, &event); err != nil {
		h.logger.WarnContext(ctx, "event rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Accepted and queued to be stored; the caller does not wait for index
	// visibility.
	writeJSON(w, http.StatusAccepted, event)
}

func (h *Handler) handleGetUserEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		http.Error(w, "userId must be an integer", http.StatusBadRequest)
		return
	}
	size, ok := sizeParam(r)
	if !ok {
		http.Error(w, "size must be an integer", http.StatusBadRequest)
		return
	}

	events, err := h.profiles.UserEvents(ctx, userID, size)
	switch {
	case errors.Is(err, profile.ErrMembershipNotFound):
		w.Header().Set(ReasonHeader, err.Error())
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	case errors.Is(err, profile.ErrDownstreamUnavailable):
		w.Header().Set(ReasonHeader, "Membership service unavailable, try again later")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "user events query failed",
			"user_id", userID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, func(size int) ([]profile.UserEvent, error) {
		return h.profiles.SearchEvents(r.Context(), chi.URLParam(r, "eventName"), size)
	})
}

func (h *Handler) handleSearchLocations(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, func(size int) ([]profile.UserEvent, error) {
		return h.profiles.SearchLocations(r.Context(), chi.URLParam(r, "location"), size)
	})
}

func (h *Handler) handleSearchPartners(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, func(size int) ([]profile.UserEvent, error) {
		return h.profiles.SearchPartners(r.Context(), chi.URLParam(r, "partner"), size)
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, query func(size int) ([]profile.UserEvent, error)) {
	size, ok := sizeParam(r)
	if !ok {
		http.Error(w, "size must be an integer", http.StatusBadRequest)
		return
	}

	events, err := query(size)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// sizeParam reads the size query parameter. Absent means -1, the "use the
// index's default page" sentinel.
func sizeParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return -1, true
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return size, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
