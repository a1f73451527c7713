package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/storage"
	"github.com/username/fintrack/backend/src/utils"
)

// TransactionHandler serves the transaction write path and the period
// summary endpoint.
type TransactionHandler struct {
	txService        *services.TransactionService
	analyticsService *services.AnalyticsService
}

func NewTransactionHandler(txService *services.TransactionService, analyticsService *services.AnalyticsService) *TransactionHandler {
	return &TransactionHandler{
		txService:        txService,
		analyticsService: analyticsService,
	}
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var input services.CreateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.txService.Create(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTransactionType),
			errors.Is(err, services.ErrInvalidAmount):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrUserNotFound):
			utils.SendJSONError(w, "User not found", http.StatusNotFound)
		default:
			logger.FromContext(r.Context()).Error("Transaction creation failed", "error", err)
			utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		}
		return
	}

	logger.FromContext(r.Context()).Info("Transaction created",
		"transactionID", tx.ID, "type", tx.Type, "category", tx.Category)
	utils.SendJSONResponse(w, http.StatusCreated, tx)
}

// HandleGetTransactions returns the period summary: the resolved date
// range, the aggregate, and the raw transactions for the period.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	token := r.URL.Query().Get("period")
	if token == "" {
		token = "30d"
	}

	resp, err := h.analyticsService.PeriodSummary(r.Context(), userID, token)
	if err != nil {
		sendAnalyticsError(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.SendJSONError(w, "Transaction id required", http.StatusBadRequest)
		return
	}

	if err := h.txService.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Transaction deletion failed", "transactionID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Transaction deleted", "transactionID", id)
	w.WriteHeader(http.StatusNoContent)
}
