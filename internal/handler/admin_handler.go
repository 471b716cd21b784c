package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"honeypot-service/internal/auth"
	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
	"honeypot-service/internal/service"
	"honeypot-service/internal/util"
)

const (
	defaultListLimit    = 100
	defaultLiveLimit    = 10
	defaultTimelineDays = 7
)

// AdminHandler serves the dashboard read APIs, admin login, and bulk clear.
type AdminHandler struct {
	aggregator    *service.Aggregator
	store         repository.AttackStore
	authenticator *auth.AdminAuthenticator
	logger        *zap.Logger
}

// NewAdminHandler creates the dashboard handler.
func NewAdminHandler(
	aggregator *service.Aggregator,
	store repository.AttackStore,
	authenticator *auth.AdminAuthenticator,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		aggregator:    aggregator,
		store:         store,
		authenticator: authenticator,
		logger:        logger,
	}
}

// RegisterRoutes registers the admin and dashboard routes.
func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Post("/admin/login", h.Login)

	router.Route("/attacks", func(r chi.Router) {
		r.Get("/", h.ListAttacks)
		r.Get("/stats", h.GetStats)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/live", h.GetLive)
		r.With(h.requireAdmin).Delete("/", h.ClearAttacks)
	})
}

// Login verifies the dashboard password and issues a bearer token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondWithError(w, http.StatusUnauthorized, "Invalid admin password")
			return
		}
		h.logger.Error("admin login failed", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

// ListAttacks returns one page of the event listing plus the total count.
func (h *AdminHandler) ListAttacks(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	offset := queryInt(r, "offset", 0)

	page, err := h.aggregator.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list attacks", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// GetStats returns the dashboard overview.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.aggregator.Overview(r.Context())
	if err != nil {
		h.logger.Error("failed to compute attack stats", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetTimeline returns per-day category counts for the trailing window.
func (h *AdminHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultTimelineDays)

	timeline, err := h.aggregator.Timeline(r.Context(), int(days))
	if err != nil {
		h.logger.Error("failed to compute attack timeline", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, timeline)
}

// GetLive returns the most recent events for the live feed.
func (h *AdminHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLiveLimit)

	events, err := h.aggregator.Live(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch live attacks", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// ClearAttacks deletes every stored event. Admin token required.
func (h *AdminHandler) ClearAttacks(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("failed to clear attacks", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("Attack log cleared via API", util.Int64("deleted", deleted))
	respondWithJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// requireAdmin gates destructive routes behind a live bearer token.
func (h *AdminHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		ok, err := h.authenticator.Verify(r.Context(), token)
		if err != nil {
			h.logger.Error("admin token verification failed", util.ErrorField(err))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func queryInt(r *http.Request, key string, defaultValue int64) int64 {
	if raw := r.URL.Query().Get(key); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}
