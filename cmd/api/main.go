// Package main is the entrypoint for the waxlog API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/waxlog/waxlog/internal/ai"
	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/config"
	"github.com/waxlog/waxlog/internal/events"
	"github.com/waxlog/waxlog/internal/handler"
	"github.com/waxlog/waxlog/internal/metadata"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/repository"
	"github.com/waxlog/waxlog/internal/seeder"
	"github.com/waxlog/waxlog/internal/server"
	"github.com/waxlog/waxlog/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Secondary database/sql connection for the catalog maintenance tooling.
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open maintenance connection",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Shared infrastructure
	metricsRecorder := metrics.NewInMemory()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	metaClient := metadata.New(cfg.MetadataUserAgent, cfg.MetadataTimeout)

	var google *service.GoogleOAuth
	if cfg.GoogleOAuthEnabled() {
		google = service.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		logger.Info("google oauth enabled")
	}

	var gemini handler.AIClient
	if cfg.GeminiAPIKey != "" {
		gemini = ai.NewGemini(cfg.GeminiAPIKey)
		logger.Info("gemini client enabled")
	}

	// Initialize services
	authService := service.NewAuthService(repo, tokens, google, metricsRecorder)
	userService := service.NewUserService(repo)
	albumService := service.NewAlbumService(repo, cacheClient, metaClient, metaClient, metricsRecorder)
	reviewService := service.NewReviewService(repo, metricsRecorder)
	diaryService := service.NewDiaryService(repo, metricsRecorder)
	listService := service.NewListService(repo, logger, metricsRecorder)
	notificationService := service.NewNotificationService(repo)

	deduper := seeder.New(logger, seeder.NewRepository(sqlDB), metaClient, metricsRecorder)

	// Activity event pipeline
	activityPublisher := events.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	activityWorker := events.NewWorker(cacheClient.Client(), logger, events.NewConsumerID(), metricsRecorder)
	activitySummarizer := events.NewSummarizer(cacheClient.Client())

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	authHandler := handler.NewAuthHandler(logger, authService, activityPublisher, cfg.FrontendURL)
	userHandler := handler.NewUserHandler(logger, userService, activityPublisher)
	albumHandler := handler.NewAlbumHandler(logger, albumService, reviewService)
	reviewHandler := handler.NewReviewHandler(logger, reviewService, activityPublisher)
	diaryHandler := handler.NewDiaryHandler(logger, diaryService, activityPublisher)
	listHandler := handler.NewListHandler(logger, listService, activityPublisher)
	notificationHandler := handler.NewNotificationHandler(logger, notificationService)
	exploreHandler := handler.NewExploreHandler(logger, albumService, userService)
	aiHandler := handler.NewAIHandler(logger, gemini)
	adminHandler := handler.NewAdminHandler(logger, repo, deduper, activitySummarizer)

	// Setup router
	r := setupRouter(routerDeps{
		base:          h,
		health:        healthHandler,
		metrics:       metricsHandler,
		auth:          authHandler,
		users:         userHandler,
		albums:        albumHandler,
		reviews:       reviewHandler,
		diary:         diaryHandler,
		lists:         listHandler,
		notifications: notificationHandler,
		explore:       exploreHandler,
		ai:            aiHandler,
		admin:         adminHandler,
		repo:          repo,
		cache:         cacheClient,
		tokens:        tokens,
		cfg:           cfg,
		logger:        logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Run the activity worker alongside the HTTP server and drain it on
	// shutdown.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go func() {
		if err := activityWorker.Run(workerCtx); err != nil && err != context.Canceled {
			logger.Error("activity worker stopped", "error", err)
		}
	}()
	srv.OnShutdown("activity-worker", activityWorker.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	base          *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	albums        *handler.AlbumHandler
	reviews       *handler.ReviewHandler
	diary         *handler.DiaryHandler
	lists         *handler.ListHandler
	notifications *handler.NotificationHandler
	explore       *handler.ExploreHandler
	ai            *handler.AIHandler
	admin         *handler.AdminHandler
	repo          *repository.Repository
	cache         *cache.Cache
	tokens        *auth.TokenIssuer
	cfg           *config.Config
	logger        *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = d.cfg.IsDevelopment()
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	// Root info endpoint
	r.Get("/", d.base.Hello)

	authCfg := middleware.AuthConfig{
		Logger:     d.logger,
		Repository: d.repo,
		Cache:      d.cache,
		Tokens:     d.tokens,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  d.logger,
		Cache:   d.cache,
		Enabled: d.cfg.RateLimitEnabled,
		RPS:     d.cfg.RateLimitRPS,
		Burst:   d.cfg.RateLimitBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes. Optional auth so viewer state (is_following,
		// liked_by_me) resolves when a token is present.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthOptional(authCfg))
			r.Use(middleware.RateLimitIP(rateLimitCfg))

			r.Post("/auth/register", d.auth.Register)
			r.Post("/auth/login", d.auth.Login)
			r.Get("/auth/google", d.auth.GoogleStart)
			r.Get("/auth/google/callback", d.auth.GoogleCallback)
			r.Get("/auth/spotify", d.auth.ProviderStub)
			r.Get("/auth/spotify/callback", d.auth.ProviderStub)
			r.Get("/auth/apple", d.auth.ProviderStub)
			r.Get("/auth/apple/callback", d.auth.ProviderStub)

			r.Get("/albums", d.albums.List)
			r.Get("/albums/{id}", d.albums.Get)
			r.Get("/albums/{id}/ratings", d.albums.Ratings)
			r.Get("/albums/{id}/reviews", d.albums.Reviews)

			r.Get("/explore/trending", d.explore.Trending)
			r.Get("/explore/popular", d.explore.Popular)
			r.Get("/explore/genres", d.explore.Genres)
			r.Get("/explore/genres/{genre}", d.explore.ByGenre)
			r.Get("/search", d.explore.Search)

			r.Get("/reviews/{id}", d.reviews.Get)
			r.Get("/reviews/{id}/comments", d.reviews.Comments)

			r.Get("/users/{id}", d.users.GetProfile)
			r.Get("/users/by-username/{username}", d.users.GetProfileByUsername)
			r.Get("/users/recommended", d.users.Recommended)
			r.Get("/users/{id}/favorites", d.users.Favorites)
			r.Get("/users/{id}/reviews", d.reviews.UserReviews)
			r.Get("/users/{id}/diary", d.diary.UserDiary)
			r.Get("/users/{id}/lists", d.lists.UserLists)

			r.Get("/lists/{id}", d.lists.Get)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Get("/auth/me", d.auth.Me)
			r.Post("/auth/refresh", d.auth.Refresh)
			r.Post("/auth/logout", d.auth.Logout)

			r.Put("/me/profile", d.users.UpdateProfile)
			r.Put("/me/favorites", d.users.SetFavorites)
			r.Get("/me/following", d.users.Following)
			r.Get("/me/lists", d.lists.Mine)
			r.Get("/me/lists/liked", d.lists.Liked)

			r.Post("/users/{id}/follow", d.users.Follow)
			r.Delete("/users/{id}/follow", d.users.Unfollow)

			r.Post("/albums", d.albums.Create)
			r.Get("/explore/popular-with-friends", d.explore.PopularWithFriends)

			r.Get("/feed", d.reviews.Feed)
			r.Post("/reviews", d.reviews.Create)
			r.Put("/reviews/{id}", d.reviews.Update)
			r.Delete("/reviews/{id}", d.reviews.Delete)
			r.Post("/reviews/{id}/like", d.reviews.Like)
			r.Delete("/reviews/{id}/like", d.reviews.Unlike)
			r.Post("/reviews/{id}/comments", d.reviews.AddComment)

			r.Post("/diary", d.diary.Log)
			r.Get("/diary", d.diary.List)
			r.Get("/diary/export", d.diary.Export)
			r.Put("/diary/{id}", d.diary.Update)
			r.Delete("/diary/{id}", d.diary.Delete)

			r.Post("/lists", d.lists.Create)
			r.Put("/lists/{id}", d.lists.Update)
			r.Delete("/lists/{id}", d.lists.Delete)
			r.Post("/lists/{id}/albums", d.lists.AddAlbum)
			r.Delete("/lists/{id}/albums/{albumID}", d.lists.RemoveAlbum)
			r.Post("/lists/{id}/like", d.lists.Like)
			r.Delete("/lists/{id}/like", d.lists.Unlike)
			r.Post("/lists/{id}/collaborators", d.lists.AddCollaborator)
			r.Delete("/lists/{id}/collaborators/{userID}", d.lists.RemoveCollaborator)

			r.Get("/notifications", d.notifications.List)
			r.Post("/notifications/{id}/read", d.notifications.MarkRead)
			r.Post("/notifications/read-all", d.notifications.MarkAllRead)

			r.Post("/ai/discover", d.ai.Discover)
			r.Post("/ai/album-insight", d.ai.AlbumInsight)
			r.Post("/ai/polish-review", d.ai.PolishReview)
			r.Post("/explore/ai-discovery", d.ai.Discover)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RequireAdmin(d.logger))

			r.Get("/admin/analytics", d.admin.Analytics)
			r.Post("/admin/albums/deduplicate", d.admin.Deduplicate)
			r.Put("/albums/{id}/description", d.albums.UpdateDescription)
			r.Post("/albums/{id}/refresh-cover", d.albums.RefreshCover)
		})
	})

	// 404 and 405 handlers
	r.NotFound(d.base.NotFound)
	r.MethodNotAllowed(d.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
