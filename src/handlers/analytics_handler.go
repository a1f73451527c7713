package handlers

import (
	"errors"
	"net/http"

	"github.com/username/fintrack/backend/src/analytics"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/storage"
	"github.com/username/fintrack/backend/src/utils"
)

// AnalyticsHandler serves the chart/breakdown endpoint and the
// dashboard.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	token := r.URL.Query().Get("period")
	if token == "" {
		token = "30d"
	}

	resp, err := h.analyticsService.Analytics(r.Context(), userID, token)
	if err != nil {
		sendAnalyticsError(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	resp, err := h.analyticsService.Dashboard(r.Context(), userID)
	if err != nil {
		sendAnalyticsError(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

// sendAnalyticsError maps the error taxonomy onto response codes: an
// unknown period token is the client's fault, a missing user means
// registration was never completed, anything else is a server fault.
func sendAnalyticsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidPeriod):
		utils.SendJSONError(w, "Invalid period. Use one of: 7d, 30d, 90d, 1y", http.StatusBadRequest)
	case errors.Is(err, storage.ErrUserNotFound):
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("Analytics request failed", "error", err)
		utils.SendJSONError(w, "Failed to compute analytics", http.StatusInternalServerError)
	}
}
