package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/storage"
	"github.com/username/fintrack/backend/src/utils"
)

// InsightHandler serves the AI insight endpoints. The service is nil
// when no model API key is configured.
type InsightHandler struct {
	insightService *services.InsightService
}

func NewInsightHandler(insightService *services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if h.insightService == nil {
		utils.SendJSONError(w, "AI insights are not configured", http.StatusServiceUnavailable)
		return
	}

	text, err := h.insightService.GenerateInsights(r.Context(), userID)
	if err != nil {
		sendInsightError(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"insights": text})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *InsightHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if h.insightService == nil {
		utils.SendJSONError(w, "AI insights are not configured", http.StatusServiceUnavailable)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		utils.SendJSONError(w, "A non-empty message is required", http.StatusBadRequest)
		return
	}

	text, err := h.insightService.Chat(r.Context(), userID, strings.TrimSpace(req.Message))
	if err != nil {
		sendInsightError(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"reply": text})
}

func sendInsightError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrUserNotFound) {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Error("Insight generation failed", "error", err)
	utils.SendJSONError(w, "Failed to generate insights", http.StatusInternalServerError)
}
