package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"go.uber.org/zap"

	"honeypot-service/internal/models"
	"honeypot-service/internal/service"
	"honeypot-service/internal/util"
)

// decoyResponse is the fixed failure body every honeypot login receives.
// It never varies with the classification outcome, so an attacker learns
// nothing about having been detected.
var decoyResponse = map[string]interface{}{
	"success":    false,
	"message":    "Invalid credentials. Please try again.",
	"error_code": "AUTH_FAILED",
}

// HoneypotHandler serves the decoy login endpoint.
type HoneypotHandler struct {
	recorder      *service.Recorder
	endpointLabel string
	logger        *zap.Logger
}

// NewHoneypotHandler creates the decoy endpoint handler.
func NewHoneypotHandler(recorder *service.Recorder, endpointLabel string, logger *zap.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		recorder:      recorder,
		endpointLabel: endpointLabel,
		logger:        logger,
	}
}

// Login captures the attempt as an attack event and answers with the decoy
// failure. The response body is identical for every classification; only a
// storage failure surfaces as an error.
func (h *HoneypotHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.HoneypotLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.recorder.Record(r.Context(), service.RecordInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Endpoint:  h.endpointLabel,
	})
	if err != nil {
		h.logger.Error("failed to record login attempt", util.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, decoyResponse)
}

// clientIP extracts the client address; middleware.RealIP has already
// resolved forwarding headers into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
