package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/storage"
	"github.com/username/fintrack/backend/src/utils"
)

// AuthHandler owns registration, login and token lifecycle.
type AuthHandler struct {
	store              storage.Store
	authService        *security.AuthService
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

func NewAuthHandler(store storage.Store, authService *security.AuthService, accessTokenExpiry, refreshTokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		store:              store,
		authService:        authService,
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.SendJSONError(w, "Username and a valid email are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		utils.SendJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	user := &models.User{Username: req.Username, Email: req.Email}
	if err := user.HashPassword(req.Password); err != nil {
		logger.FromContext(r.Context()).Error("Password hashing failed", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			utils.SendJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		logger.FromContext(r.Context()).Error("User creation failed", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("User registered", "userID", user.ID)
	utils.SendJSONResponse(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			utils.SendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.FromContext(r.Context()).Error("Login user lookup failed", "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		utils.SendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(user.ID, h.accessTokenExpiry)
	if err != nil {
		logger.FromContext(r.Context()).Error("Access token generation failed", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateToken(user.ID, h.refreshTokenExpiry)
	if err != nil {
		logger.FromContext(r.Context()).Error("Refresh token generation failed", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	expiresAt := time.Now().Add(h.accessTokenExpiry)
	session := &models.Session{
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		ExpiresAt:    expiresAt,
	}
	if err := h.store.CreateSession(r.Context(), session); err != nil {
		logger.FromContext(r.Context()).Error("Session creation failed", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("User logged in", "userID", user.ID)
	utils.SendJSONResponse(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	userID, err := h.authService.ValidateToken(req.RefreshToken)
	if err != nil {
		utils.SendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}
	if _, err := h.store.GetSessionByRefreshToken(r.Context(), req.RefreshToken); err != nil {
		utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(userID, h.accessTokenExpiry)
	if err != nil {
		logger.FromContext(r.Context()).Error("Access token generation failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}
	expiresAt := time.Now().Add(h.accessTokenExpiry)
	if err := h.store.UpdateSessionToken(r.Context(), req.RefreshToken, accessToken, expiresAt); err != nil {
		logger.FromContext(r.Context()).Error("Session rotation failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, tokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt})
}

func (h *AuthHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString != "" {
		if err := h.store.DeleteSessionByToken(r.Context(), tokenString); err != nil {
			logger.FromContext(r.Context()).Error("Session deletion failed", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
