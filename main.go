package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/fintrack/backend/src/config"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/handlers"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/storage"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(frontendBaseURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == frontendBaseURL {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
			} else if origin == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)

	logger.L.Info("FinTrack backend server starting...")

	if len(cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid: must be at least 32 characters.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		stdlog.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db, cfg.DatabasePath, cfg.MigrationsPath); err != nil {
		stdlog.Fatalf("Failed to run migrations: %v", err)
	}

	store := storage.NewSQLiteStore(db)
	responseCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(cfg.JWTSecret)
	emailService := services.NewEmailService(
		cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
		cfg.SenderEmail, cfg.SenderName)

	analyticsService := services.NewAnalyticsService(store, responseCache)
	txService := services.NewTransactionService(store, analyticsService, emailService)

	// Optional collaborators: constructed once at startup when
	// configured, nil otherwise (handlers answer 503 for nil).
	var uploadService *services.UploadService
	if cfg.UploadBucket != "" {
		gcsClient, err := gcs.NewClient(context.Background())
		if err != nil {
			stdlog.Fatalf("Failed to create storage client: %v", err)
		}
		defer gcsClient.Close()
		uploadService = services.NewUploadService(gcsClient, cfg.UploadBucket, cfg.UploadURLExpiry)
		logger.L.Info("Upload service enabled", "bucket", cfg.UploadBucket)
	}

	var insightService *services.InsightService
	if cfg.GeminiAPIKey != "" {
		genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:      cfg.GeminiAPIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		})
		if err != nil {
			stdlog.Fatalf("Failed to create genai client: %v", err)
		}
		insightService = services.NewInsightService(store, genaiClient, cfg.GeminiModel)
		logger.L.Info("Insight service enabled", "model", cfg.GeminiModel)
	}

	authHandler := handlers.NewAuthHandler(store, authService, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	txHandler := handlers.NewTransactionHandler(txService, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	insightHandler := handlers.NewInsightHandler(insightService)
	uploadHandler := handlers.NewUploadHandler(uploadService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS(cfg.FrontendBaseURL))
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "FinTrack Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.RegisterUserHandler)
			r.Post("/auth/login", authHandler.LoginUserHandler)
			r.Post("/auth/refresh", authHandler.RefreshTokenHandler)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authHandler.AuthMiddleware)

			r.Post("/auth/logout", authHandler.LogoutUserHandler)

			r.Post("/transactions", txHandler.HandleCreateTransaction)
			r.Get("/transactions", txHandler.HandleGetTransactions)
			r.Delete("/transactions/{id}", txHandler.HandleDeleteTransaction)

			r.Get("/analytics", analyticsHandler.HandleGetAnalytics)
			r.Get("/dashboard", analyticsHandler.HandleGetDashboard)

			r.Get("/insights", insightHandler.HandleGetInsights)
			r.Post("/insights/chat", insightHandler.HandleChat)

			r.Post("/uploads/url", uploadHandler.HandleCreateUploadURL)
		})
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
