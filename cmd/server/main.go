package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	barcodeapp "github.com/barcodeprint/backend/internal/application/barcode"
	eventapp "github.com/barcodeprint/backend/internal/application/event"
	printingapp "github.com/barcodeprint/backend/internal/application/printing"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/cache"
	"github.com/barcodeprint/backend/internal/infrastructure/config"
	"github.com/barcodeprint/backend/internal/infrastructure/event"
	"github.com/barcodeprint/backend/internal/infrastructure/logger"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence"
	infraprinting "github.com/barcodeprint/backend/internal/infrastructure/printing"
	"github.com/barcodeprint/backend/internal/infrastructure/scheduler"
	"github.com/barcodeprint/backend/internal/infrastructure/storage"
	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
	"github.com/barcodeprint/backend/internal/interfaces/http/handler"
	"github.com/barcodeprint/backend/internal/interfaces/http/middleware"
	"github.com/barcodeprint/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/barcodeprint/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

//	@title			Barcode Print API
//	@version		1.0
//	@description	Generate 12-digit numeric barcodes, manage their titles and
//	@description	export them to PDF or print them on 20mm/40mm thermal labels.

//	@contact.name	API Support
//	@contact.url	https://github.com/barcodeprint/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Barcode Print API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	rootCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Telemetry: traces, metrics, logs and profiling, each optional
	tel, err := telemetry.Setup(rootCtx, cfg.Telemetry, Version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.Logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	barcodeRepo := persistence.NewGormBarcodeRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)

	// Idempotency store shared by the HTTP middleware and event handlers
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Idempotency, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Event bus with audit logging and business metrics
	eventBus := event.NewInMemoryEventBus(log)
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	idempotencyMetrics := &event.IdempotencyMetrics{}
	handlerConfig := shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL}
	subscribe := func(h shared.EventHandler) {
		eventBus.Subscribe(event.NewIdempotentHandler(h, idempotencyStore, log,
			event.WithIdempotencyConfig(handlerConfig),
			event.WithIdempotencyMetrics(idempotencyMetrics)), h.EventTypes()...)
	}
	subscribe(eventapp.NewAuditLogHandler(log, eventapp.WithPayloadEncoder(eventSerializer)))

	// Services
	rasterizer := infraprinting.NewCode128Rasterizer()
	barcodeService := barcodeapp.NewBarcodeService(barcodeRepo, log,
		barcodeapp.WithRasterizer(rasterizer),
		barcodeapp.WithEventPublisher(eventBus),
	)

	var labelOpts []printingapp.LabelServiceOption
	labelOpts = append(labelOpts, printingapp.WithEvents(eventBus))
	if tel.Meter.IsEnabled() {
		barcodeMetrics, err := telemetry.NewBarcodeMetrics(telemetry.BarcodeMetricsConfig{
			Meter:   tel.Meter.Meter("barcode-print/business"),
			Logger:  log,
			Counter: barcodeService,
		})
		if err != nil {
			log.Warn("Failed to create business metrics", zap.Error(err))
		} else {
			defer barcodeMetrics.Stop()
			subscribe(eventapp.NewMetricsHandler(barcodeMetrics))
			labelOpts = append(labelOpts, printingapp.WithRenderTracker(barcodeMetrics))
		}
	}

	pdfRenderer, err := newPDFRenderer(cfg.Printing, log)
	if err != nil {
		// print jobs still work; exports fail with RENDER_FAILED
		log.Error("PDF renderer unavailable, exports are disabled", zap.Error(err))
		pdfRenderer = nil
	} else {
		defer func() {
			if err := pdfRenderer.Close(); err != nil {
				log.Warn("Error closing PDF renderer", zap.Error(err))
			}
		}()
	}

	documentStorage, err := newDocumentStorage(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	labelService := printingapp.NewLabelService(
		barcodeRepo,
		printJobRepo,
		rasterizer,
		pdfRenderer,
		documentStorage,
		printingapp.LabelServiceConfig{
			Layout: printing.LayoutConfig{
				GridMargin:  cfg.Printing.GridMargin,
				RowHeight:   cfg.Printing.GridRowHeight,
				LabelMargin: cfg.Printing.LabelMargin,
			},
			MaxConcurrentJobs: cfg.Printing.MaxConcurrentJobs,
			RenderTimeout:     cfg.Printing.RenderTimeout,
			RendererName:      cfg.Printing.Renderer,
		},
		log,
		labelOpts...,
	)

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	cleanupScheduler, err := scheduler.NewCleanupScheduler(labelService, log, scheduler.CleanupSchedulerConfig{
		Enabled:    cfg.Printing.OutputRetention > 0,
		Interval:   cfg.Printing.CleanupInterval,
		Retention:  cfg.Printing.OutputRetention,
		RunTimeout: 5 * time.Minute,
		RunOnStart: true,
	})
	if err != nil {
		log.Fatal("Failed to create cleanup scheduler", zap.Error(err))
	}
	if err := cleanupScheduler.Start(rootCtx); err != nil {
		log.Fatal("Failed to start cleanup scheduler", zap.Error(err))
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: tel.Meter,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	if tel.Profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, logger.WithSkipPaths("/health")))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	systemHandler := handler.NewSystemHandler(Version, db)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation, guarded by swagger.enabled and swagger.allowed_ips
	docs.SwaggerInfo.Version = Version
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var apiMiddleware []gin.HandlerFunc
	var renderLimit []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))

		// renders are expensive: a tenth of the general budget per route
		renderLimiter := middleware.NewRateLimiter(max(cfg.HTTP.RateLimitRequests/10, 1), cfg.HTTP.RateLimitWindow)
		defer renderLimiter.Stop()
		renderLimit = append(renderLimit, middleware.RenderRateLimit(renderLimiter))
	}

	var mutating []gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		mutating = append(mutating, middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		}))
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAPIMiddleware(apiMiddleware...),
	)

	barcodeHandler := handler.NewBarcodeHandler(barcodeService)
	printHandler := handler.NewPrintHandler(labelService)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(handler.BarcodeRoutes(barcodeHandler, mutating...)).
		Register(handler.PrintRoutes(printHandler, append(renderLimit, mutating...)...)).
		Register(systemRoutes)
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group), zap.String("method", route.Method), zap.String("path", route.Path))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-rootCtx.Done()
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := cleanupScheduler.Stop(ctx); err != nil {
		log.Warn("Cleanup scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	stats := idempotencyMetrics.Stats()
	log.Info("Server exited gracefully",
		zap.Int64("events_processed", stats.EventsProcessed),
		zap.Int64("events_duplicate", stats.EventsDuplicate),
		zap.Int64("events_failed", stats.EventsFailed),
	)
}

// newPDFRenderer builds the renderer selected by printing.renderer
func newPDFRenderer(cfg config.PrintingConfig, log *zap.Logger) (infraprinting.PDFRenderer, error) {
	switch cfg.Renderer {
	case "wkhtmltopdf":
		return infraprinting.NewWkhtmltopdfRenderer(&infraprinting.WkhtmltopdfConfig{
			BinaryPath:     cfg.WkhtmltopdfPath,
			DefaultTimeout: cfg.RenderTimeout,
			Logger:         log,
		})
	case "chromedp", "":
		return infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
			DefaultTimeout: cfg.RenderTimeout,
			RemoteURL:      cfg.RemoteURL,
			ExecPath:       cfg.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
}

// newDocumentStorage builds the sink selected by storage.driver
func newDocumentStorage(cfg config.StorageConfig, log *zap.Logger) (infraprinting.DocumentStorage, error) {
	switch cfg.Driver {
	case "s3":
		s3Storage, err := storage.NewS3DocumentStorage(&cfg,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.PresignExpiration))
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	case "fs", "":
		return infraprinting.NewFileSystemStorage(&infraprinting.FileSystemStorageConfig{
			BasePath: cfg.BasePath,
			BaseURL:  cfg.URLPrefix,
			Logger:   log,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
