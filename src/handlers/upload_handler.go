package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

// UploadHandler issues presigned upload URLs. The service is nil when
// no bucket is configured.
type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

func (h *UploadHandler) HandleCreateUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if h.uploadService == nil {
		utils.SendJSONError(w, "File uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Filename) == "" {
		utils.SendJSONError(w, "A filename is required", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	uploadURL, err := h.uploadService.IssueUploadURL(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		logger.FromContext(r.Context()).Error("Signed URL issuance failed", "filename", req.Filename, "error", err)
		utils.SendJSONError(w, "Failed to issue upload URL", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Upload URL issued", "objectKey", uploadURL.ObjectKey)
	utils.SendJSONResponse(w, http.StatusOK, uploadURL)
}
