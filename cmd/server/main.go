package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	cartapp "github.com/aurum/jewelstore/internal/application/cart"
	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	contentapp "github.com/aurum/jewelstore/internal/application/content"
	identityapp "github.com/aurum/jewelstore/internal/application/identity"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	shippingapp "github.com/aurum/jewelstore/internal/application/shipping"
	"github.com/aurum/jewelstore/internal/domain/identity"
	"github.com/aurum/jewelstore/internal/infrastructure/auth"
	"github.com/aurum/jewelstore/internal/infrastructure/cache"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/aurum/jewelstore/internal/infrastructure/event"
	"github.com/aurum/jewelstore/internal/infrastructure/logger"
	"github.com/aurum/jewelstore/internal/infrastructure/mail"
	"github.com/aurum/jewelstore/internal/infrastructure/messaging"
	"github.com/aurum/jewelstore/internal/infrastructure/persistence"
	"github.com/aurum/jewelstore/internal/infrastructure/printing"
	"github.com/aurum/jewelstore/internal/infrastructure/scheduler"
	"github.com/aurum/jewelstore/internal/infrastructure/storage"
	"github.com/aurum/jewelstore/internal/infrastructure/telemetry"
	"github.com/aurum/jewelstore/internal/interfaces/http/handler"
	"github.com/aurum/jewelstore/internal/interfaces/http/middleware"
	"github.com/aurum/jewelstore/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/aurum/jewelstore/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Jewelstore API
//	@version		1.0
//	@description	Storefront and back-office API for a jewellery retailer priced from live metal rates

//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

// idempotencyTTL bounds how long a delivered event id is remembered
const idempotencyTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	appLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = appLog.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Env, appLog.Logger)
	if err != nil {
		appLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := tel.BridgeLogger(appLog.Logger)

	if cfg.Watch(func(next *config.Config) {
		if next.Log.Level != cfg.Log.Level {
			appLog.SetLevel(next.Log.Level)
			log.Info("Log level changed", zap.String("from", cfg.Log.Level), zap.String("to", next.Log.Level))
			cfg.Log.Level = next.Log.Level
		}
	}, func(err error) {
		log.Warn("Config reload skipped", zap.Error(err))
	}) {
		log.Info("Watching config file", zap.String("file", cfg.File()))
	}

	log.Info("Starting jewelstore",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Database
	slowQuery := time.Duration(cfg.Database.SlowQueryMs) * time.Millisecond
	dbOpts := []persistence.Option{
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowQuery(slowQuery),
			logger.WithSQLValues(cfg.Database.LogSQLValues))),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithPlugins(telemetry.GormPlugins(telemetry.DBTracingConfig{
			DBName:             cfg.Database.DBName,
			SlowQueryThreshold: slowQuery,
		}, log)...))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}
	log.Info("Database connected")

	meter := tel.Meter("jewelstore")
	if err := telemetry.RegisterPoolMetrics(meter, func() (telemetry.PoolStats, error) {
		s, err := db.Stats()
		return telemetry.PoolStats{OpenConnections: s.OpenConnections, InUse: s.InUse, Idle: s.Idle, WaitCount: s.WaitCount}, err
	}); err != nil {
		log.Warn("Failed to register pool metrics", zap.Error(err))
	}
	businessMetrics, err := telemetry.NewBusinessMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Cache, carts and token revocation share one backend
	backend, redisClient, err := cache.NewBackend(cfg.Redis, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.App.IsProduction()))
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		_ = backend.Close()
	}()
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Events
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	bus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	idempotency := cache.NewIdempotencyStore(backend)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	rateRepo := persistence.NewGormMetalRateRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)
	sectionRepo := persistence.NewGormHomeSectionRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Adapters
	images := newImageStorage(ctx, cfg, log)
	renderer, closeRenderer := newDocumentRenderer(cfg, log)
	defer closeRenderer()
	mailer := newMailer(cfg, log)
	rates := cache.NewCachedRateLookup(rateRepo, backend, cfg.Cache.RateTTL, log)

	// Services
	settingService := settingsapp.NewSettingService(settingRepo, log)
	// Catalog and cart display read rates through the cache; bills and
	// estimates price against the repository so a sale never uses a stale rate.
	pricer := pricingapp.NewPricer(rates, settingService, businessMetrics, log)
	checkoutPricer := pricingapp.NewPricer(rateRepo, settingService, businessMetrics, log)
	rateService := pricingapp.NewRateService(rateRepo, rates, bus, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, pricer, images, bus, log)
	billService := billingapp.NewBillService(billingapp.BillServiceDeps{
		BillRepo: billRepo,
		TxScope:  txScope,
		Pricer:   checkoutPricer,
		Renderer: renderer,
		Store:    settingService,
		Mailer:   mailer,
		Events:   bus,
		Logger:   log,
	})
	estimateService := billingapp.NewEstimateService(billingapp.EstimateServiceDeps{
		EstimateRepo: estimateRepo,
		ProductRepo:  productRepo,
		Bills:        billService,
		TxScope:      txScope,
		Pricer:       checkoutPricer,
		Validity:     settingService,
		Renderer:     renderer,
		Store:        settingService,
		Events:       bus,
		Logger:       log,
	})
	cartService := cartapp.NewCartService(cache.NewCartStore(backend, cfg.Cache.CartTTL), productRepo, pricer, billService, businessMetrics, log)
	sectionService := contentapp.NewHomeSectionService(sectionRepo, log)
	shipmentService := shippingapp.NewShipmentService(shipmentRepo, billRepo, bus, log)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, blacklist, jwtService, log)

	// Event subscribers
	bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	lowStock := catalogapp.NewLowStockHandler(settingService.LowStockThreshold, log)
	bus.Subscribe(lowStock, lowStock.EventTypes()...)
	if cfg.Mail.Enabled && cfg.Mail.NotifyBillCreated {
		notifier := mail.NewBillCreatedNotifier(mailer, settingService.StoreName, log)
		bus.Subscribe(event.NewIdempotentHandler(notifier, idempotency, idempotencyTTL, log), notifier.EventTypes()...)
	}
	if cfg.Kafka.Enabled {
		forwarder, err := messaging.NewKafkaForwarder(&cfg.Kafka, serializer, log)
		if err != nil {
			log.Fatal("Failed to create Kafka forwarder", zap.Error(err))
		}
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Warn("Failed to close Kafka writer", zap.Error(err))
			}
		}()
		bus.Subscribe(forwarder, forwarder.EventTypes()...)
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// First-run data
	if n, err := settingService.SeedDefaults(ctx); err != nil {
		log.Error("Failed to seed default settings", zap.Error(err))
	} else if n > 0 {
		log.Info("Seeded default settings", zap.Int("count", n))
	}
	created, err := userService.Bootstrap(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword)
	if err != nil {
		log.Error("Failed to bootstrap admin user", zap.Error(err))
	} else if created {
		log.Info("Created bootstrap admin", zap.String("username", cfg.Auth.BootstrapUsername))
	}

	// Background jobs
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.NewScheduler(scheduler.SchedulerConfig{
			JobTimeout:  cfg.Scheduler.JobTimeout,
			RunOnStart:  true,
			StartJitter: 5 * time.Second,
		}, log)
		expiry := scheduler.NewEstimateExpiryJob(estimateService, cfg.Scheduler.BatchSize, log)
		if err := jobs.Register(expiry, cfg.Scheduler.EstimateExpiryInterval); err != nil {
			log.Fatal("Failed to register estimate expiry job", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies", zap.Error(err))
	}

	probes := []string{"/health", "/health/live", "/ready"}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, probes...))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tel.Enabled(),
		SkipPaths:   probes,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:          cfg.Telemetry.ProfilingEnabled,
		SkipPaths:        probes,
		SkipPathPrefixes: []string{"/swagger"},
	}))
	if cfg.HTTP.SecurityHeadersEnable {
		security := middleware.DefaultSecurityConfig()
		security.HSTSEnabled = cfg.App.IsProduction()
		engine.Use(middleware.SecureWithConfig(security))
	}
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	r := router.NewRouter(engine)
	// uploads carry their own multipart limit
	r.Use(middleware.BodyLimit(max(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize)))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 0)
		defer limiter.Stop()
		r.Use(middleware.RateLimit(limiter))
	}

	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Optional: middleware.OptionalJWTAuthMiddleware(jwtService),
		Staff:    []gin.HandlerFunc{jwtAuth, middleware.TracingAttributeInjector()},
		Admin:    middleware.RequireRole(identity.RoleAdmin),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		loginLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRPS, cfg.HTTP.AuthRateLimitBurst, 0)
		defer loginLimiter.Stop()
		guards.Login = middleware.RateLimit(loginLimiter)
	}

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = redisCheck(redisClient)
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)

	handlers := router.Handlers{
		Product:     handler.NewProductHandler(productService, cfg.HTTP.MaxUploadSize),
		Category:    handler.NewCategoryHandler(categoryService),
		MetalRate:   handler.NewMetalRateHandler(rateService, pricer),
		Setting:     handler.NewSettingHandler(settingService),
		Bill:        handler.NewBillHandler(billService),
		Estimate:    handler.NewEstimateHandler(estimateService),
		Cart:        handler.NewCartHandler(cartService),
		HomeSection: handler.NewHomeSectionHandler(sectionService),
		Shipment:    handler.NewShipmentHandler(shipmentService),
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		System:      systemHandler,
	}
	for _, g := range router.APIGroups(handlers, guards) {
		r.Register(g)
	}
	r.Setup()
	router.RegisterHealth(engine, systemHandler)

	if cfg.Swagger.Enabled {
		swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.App.IsProduction(),
		}, jwtAuth)
		engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalogapp.ImageStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, image URLs are served from the stub store",
			zap.String("base_url", cfg.Storage.PublicBaseURL))
		return storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Image bucket is not reachable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
	}
	return s3
}

func newDocumentRenderer(cfg *config.Config, log *zap.Logger) (*printing.DocumentRenderer, func()) {
	if !cfg.Printing.Enabled {
		return printing.NewDocumentRenderer(nil, log), func() {}
	}
	chrome, err := printing.NewChromedpRenderer(&cfg.Printing, log)
	if err != nil {
		log.Warn("PDF printing unavailable, serving HTML documents only", zap.Error(err))
		return printing.NewDocumentRenderer(nil, log), func() {}
	}
	return printing.NewDocumentRenderer(chrome, log), func() {
		if err := chrome.Close(); err != nil {
			log.Warn("Failed to close Chrome", zap.Error(err))
		}
	}
}

func newMailer(cfg *config.Config, log *zap.Logger) interface {
	billingapp.InvoiceMailer
	mail.TemplateSender
} {
	if !cfg.Mail.Enabled {
		return mail.NewNopMailer(log)
	}
	return mail.New(&cfg.Mail, log)
}

func redisCheck(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
