package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/storage"
	"github.com/username/fintrack/backend/src/utils"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]map[string]any{
		"missing email":  {"username": "bob", "password": "long-enough"},
		"bad email":      {"username": "bob", "email": "not-an-email", "password": "long-enough"},
		"short password": {"username": "bob", "email": "bob@example.com", "password": "short"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/register", body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"username": "bob", "email": "bob@example.com", "password": "long-enough"}
	resp, _ := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/register", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, env.server.URL+"/api/auth/register", body)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/login", map[string]any{
		"email": "ana@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", resp.StatusCode)
	}

	resp, raw := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/login", map[string]any{
		"email": "ana@example.com", "password": "correct-horse",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200 (%s)", resp.StatusCode, raw)
	}
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(raw, &tokens); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("login response is missing tokens")
	}

	resp, raw = doJSON(t, http.MethodPost, env.server.URL+"/api/auth/refresh", map[string]any{
		"refreshToken": tokens.RefreshToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200 (%s)", resp.StatusCode, raw)
	}
	var rotated struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &rotated); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if rotated.AccessToken == "" {
		t.Error("refresh response is missing the access token")
	}

	// The old access token's session row is gone after rotation.
	if _, err := env.store.GetSessionByToken(context.Background(), tokens.AccessToken); err == nil {
		t.Error("pre-rotation access token still has a live session")
	}
}

// TestAuthMiddleware runs the real middleware over a session created
// through login, then checks that logout revokes access.
func TestAuthMiddleware(t *testing.T) {
	store := storage.NewMemoryStore()
	authService := security.NewAuthService(testJWTSecret)
	authHandler := NewAuthHandler(store, authService, 15*time.Minute, 24*time.Hour)

	r := chi.NewRouter()
	r.Use(ContextualLoggerMiddleware)
	r.Post("/register", authHandler.RegisterUserHandler)
	r.Post("/login", authHandler.LoginUserHandler)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)
		r.Post("/logout", authHandler.LogoutUserHandler)
		r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
			userID, _ := GetUserIDFromContext(req.Context())
			utils.SendJSONResponse(w, http.StatusOK, map[string]int64{"userID": userID})
		})
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	doJSON(t, http.MethodPost, server.URL+"/register", map[string]any{
		"username": "ana", "email": "ana@example.com", "password": "correct-horse",
	})
	_, raw := doJSON(t, http.MethodPost, server.URL+"/login", map[string]any{
		"email": "ana@example.com", "password": "correct-horse",
	})
	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &tokens); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/whoami", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("whoami: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := get(""); status != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", status)
	}
	if status := get("garbage"); status != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", status)
	}
	if status := get(tokens.AccessToken); status != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", status)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/logout", nil)
	if err != nil {
		t.Fatalf("build logout request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", resp.StatusCode)
	}

	// The token is valid JWT-wise but its session row is gone.
	if status := get(tokens.AccessToken); status != http.StatusUnauthorized {
		t.Errorf("post-logout status = %d, want 401", status)
	}
}

// A session row past its expiry rejects the token even while the JWT
// itself is still valid.
func TestAuthMiddlewareRejectsExpiredSession(t *testing.T) {
	store := storage.NewMemoryStore()
	authService := security.NewAuthService(testJWTSecret)
	authHandler := NewAuthHandler(store, authService, 15*time.Minute, 24*time.Hour)

	user := &models.User{Username: "ana", Email: "ana@example.com", Password: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := authService.GenerateToken(user.ID, 15*time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if err := store.CreateSession(context.Background(), &models.Session{
		Token:        token,
		RefreshToken: "refresh-1",
		UserID:       user.ID,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := chi.NewRouter()
	r.Use(ContextualLoggerMiddleware, authHandler.AuthMiddleware)
	r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/whoami", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
