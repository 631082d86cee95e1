package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "social-hub-backend/docs"
	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/config"
	applogger "social-hub-backend/internal/common/logger"
	"social-hub-backend/internal/common/metrics"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	accessHTTP "social-hub-backend/internal/features/adminaccess/delivery/http"
	accessRepo "social-hub-backend/internal/features/adminaccess/repository/postgres"
	accessStream "social-hub-backend/internal/features/adminaccess/repository/redis"
	accessService "social-hub-backend/internal/features/adminaccess/service"
	i18nHTTP "social-hub-backend/internal/features/i18n/delivery/http"
	i18nRepo "social-hub-backend/internal/features/i18n/repository/postgres"
	i18nService "social-hub-backend/internal/features/i18n/service"
	mediaHTTP "social-hub-backend/internal/features/media/delivery/http"
	mediaRepo "social-hub-backend/internal/features/media/repository/postgres"
	mediaService "social-hub-backend/internal/features/media/service"
	notificationHTTP "social-hub-backend/internal/features/notification/delivery/http"
	notificationRepo "social-hub-backend/internal/features/notification/repository/postgres"
	notificationService "social-hub-backend/internal/features/notification/service"
	passwordHTTP "social-hub-backend/internal/features/password/delivery/http"
	passwordLimiter "social-hub-backend/internal/features/password/repository/redis"
	passwordService "social-hub-backend/internal/features/password/service"
	postHTTP "social-hub-backend/internal/features/post/delivery/http"
	postRepo "social-hub-backend/internal/features/post/repository/postgres"
	postService "social-hub-backend/internal/features/post/service"
	profileHTTP "social-hub-backend/internal/features/profile/delivery/http"
	profileRepo "social-hub-backend/internal/features/profile/repository/postgres"
	profileService "social-hub-backend/internal/features/profile/service"
	securityHTTP "social-hub-backend/internal/features/security/delivery/http"
	securityRepo "social-hub-backend/internal/features/security/repository/postgres"
	securityService "social-hub-backend/internal/features/security/service"
	sessionHTTP "social-hub-backend/internal/features/session/delivery/http"
	sessionWS "social-hub-backend/internal/features/session/delivery/ws"
	sessionRepo "social-hub-backend/internal/features/session/repository/postgres"
	sessionRedis "social-hub-backend/internal/features/session/repository/redis"
	sessionService "social-hub-backend/internal/features/session/service"
	usageHTTP "social-hub-backend/internal/features/usage/delivery/http"
	usageRepo "social-hub-backend/internal/features/usage/repository/postgres"
	usageCounters "social-hub-backend/internal/features/usage/repository/redis"
	usageService "social-hub-backend/internal/features/usage/service"
	"social-hub-backend/internal/platform/hibp"
	"social-hub-backend/internal/platform/postgres"
	"social-hub-backend/internal/platform/redis"
	"social-hub-backend/internal/platform/storage"
	"social-hub-backend/internal/platform/supabase"
	"social-hub-backend/internal/workers"
)

// @title           Social Hub API
// @version         1.0
// @description     Backend for the social hub: profiles, device sessions, posts, media uploads and the admin dashboard.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Supabase access token, "Bearer <jwt>"

// @tag.name profiles
// @tag.description Profile registration and editing

// @tag.name sessions
// @tag.description Device sessions - list, trust, remove, sign out other devices

// @tag.name posts
// @tag.description Feed, posting with duplicate detection, post settings

// @tag.name media
// @tag.description Direct uploads to object storage

// @tag.name admin
// @tag.description Admin dashboard - access, users, security events, notifications, usage

const (
	serviceName       = "social-hub-backend"
	sessionThrottle   = time.Minute
	rateLimiterIdle   = 10 * time.Minute
	rateLimiterSweeps = 5 * time.Minute
)

func main() {
	// Конфигурация (.env подхватывается внутри Load)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// zerolog для платформы и access-лога, zap для сервисов
	applogger.Init(serviceName, cfg.Debug)

	logger, err := newZapLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Social Hub Backend",
		zap.String("version", "1.0.0"),
		zap.Bool("debug", cfg.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем базу данных
	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgresClient.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgresClient.Migrate(); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Инициализируем Redis
	redisClient, err := redis.OpenFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Внешние клиенты
	authProvider, err := supabase.New(supabase.Config{URL: cfg.Supabase.URL, ServiceKey: cfg.Supabase.ServiceKey})
	if err != nil {
		logger.Fatal("Failed to initialize Supabase admin client", zap.Error(err))
	}
	objectStore, err := storage.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	breaches := hibp.New(cfg.Password.HIBPBaseURL, nil)

	cacheService := cache.NewCacheService(redisClient)
	pages := pagination.NewResolver(redisClient, cfg.Pagination.AdminPageSize)
	verifier := auth.NewVerifier(cfg.Supabase.JWTSecret)

	db := postgresClient.GetDB()

	// Сервисы
	notificationSvc := notificationService.NewNotificationService(notificationRepo.NewPostgresRepository(db), logger)
	securitySvc := securityService.NewSecurityService(securityRepo.NewPostgresRepository(db), notificationSvc, logger)

	accessSvc := accessService.NewAccessService(
		accessRepo.NewPostgresRepository(db),
		accessStream.NewStreamPublisher(redisClient),
		cacheService,
		securitySvc,
		accessService.Config{
			Attempts: cfg.Admin.ValidationAttempts,
			Backoff:  cfg.Admin.ValidationBackoff,
			CacheTTL: cfg.Admin.AccessCacheTTL,
		},
		logger,
		accessService.WithMetadataUpdater(authProvider),
	)

	sessionSvc := sessionService.NewSessionService(
		sessionRepo.NewPostgresRepository(db),
		sessionRedis.NewActivityThrottle(redisClient, sessionThrottle),
		sessionRedis.NewChangeBus(redisClient),
		securitySvc,
		logger,
	)

	profileSvc := profileService.NewProfileService(profileRepo.NewPostgresRepository(db), cacheService, pages, logger)
	postSvc := postService.NewPostService(
		postRepo.NewPostgresRepository(db),
		postRepo.NewSettingsRepository(db),
		cacheService,
		logger,
	)

	passwordSvc := passwordService.NewPasswordService(
		passwordLimiter.NewAttemptLimiter(redisClient, cfg.Password.Window),
		authProvider,
		breaches,
		securitySvc,
		passwordService.Config{MaxAttempts: int64(cfg.Password.MaxAttempts), Window: cfg.Password.Window},
		logger,
	)

	counters := usageCounters.NewCounters(redisClient)
	usageSvc := usageService.NewUsageService(usageRepo.NewPostgresRepository(db), counters, logger)
	mediaSvc := mediaService.NewMediaService(
		objectStore,
		mediaRepo.NewPostgresRepository(db),
		counters,
		cacheService,
		cfg.Storage.UploadURLTTL,
		logger,
	)

	translationSvc := i18nService.NewTranslationService(i18nRepo.NewPostgresRepository(db), cacheService, logger)

	logger.Info("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "X-Device-ID", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Device-ID", "X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	ipLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
	userLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)

	// Роуты
	api := newAPIGroups(router, middleware.Auth(verifier, logger), sessionSvc, ipLimiter, userLimiter, logger)

	// Публичные
	translationHandler := i18nHTTP.NewTranslationHandler(translationSvc, logger)
	translationHandler.RegisterRoutes(api.public)
	// WebSocket проверяет токен сам: браузер не может передать заголовок
	sessionWS.NewHandler(sessionSvc, verifier, cfg.Server.Origin, logger).RegisterRoutes(api.public)

	// С авторизацией
	authed := api.authed

	profileHandler := profileHTTP.NewProfileHandler(profileSvc, pages, logger)
	accessHandler := accessHTTP.NewAccessHandler(accessSvc, sessionSvc, logger)

	profileHandler.RegisterRoutes(authed)
	sessionHTTP.NewSessionHandler(sessionSvc, logger).RegisterRoutes(authed)
	passwordHTTP.NewPasswordHandler(passwordSvc, logger).RegisterRoutes(authed)
	mediaHTTP.NewMediaHandler(mediaSvc, logger).RegisterRoutes(authed)
	postHTTP.NewPostHandler(postSvc, pages, logger).RegisterRoutes(authed)
	accessHandler.RegisterRoutes(authed)
	accessHandler.RegisterEventRoutes(api.signIn)

	// Админка
	admin := authed.Group("/admin")
	admin.Use(accessHTTP.RequireAdmin(accessSvc, logger))

	accessHandler.RegisterAdminRoutes(admin)
	profileHandler.RegisterAdminRoutes(admin)
	securityHTTP.NewSecurityHandler(securitySvc, pages, logger).RegisterAdminRoutes(admin)
	notificationHTTP.NewNotificationHandler(notificationSvc, pages, logger).RegisterAdminRoutes(admin)
	usageHTTP.NewUsageHandler(usageSvc, logger).RegisterAdminRoutes(admin)
	translationHandler.RegisterAdminRoutes(admin)

	setupHealthRoutes(router, postgresClient, redisClient)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hostname, _ := os.Hostname()
	authEvents := workers.NewAuthEventWorker(redisClient, sessionSvc, accessSvc, hostname, logger)
	usageCron := workers.NewUsageCron(cfg.Usage.CronSpec, usageSvc, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error { return authEvents.Run(gctx) })
	g.Go(func() error { return usageCron.Run(gctx) })

	g.Go(func() error {
		ticker := time.NewTicker(rateLimiterSweeps)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := ipLimiter.Cleanup(rateLimiterIdle) + userLimiter.Cleanup(rateLimiterIdle); n > 0 {
					logger.Debug("Rate limiter entries evicted", zap.Int("count", n))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}

func newZapLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// dbHealth - то, что readiness-проверка знает о PostgreSQL
type dbHealth interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

func setupHealthRoutes(router *gin.Engine, db dbHealth, redisClient *redis.Client) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"postgres_pool": gin.H{
				"open":       stats.OpenConnections,
				"in_use":     stats.InUse,
				"idle":       stats.Idle,
				"wait_count": stats.WaitCount,
			},
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
