package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/fintera-ledger/docs" // Swagger docs
	"github.com/sjperalta/fintera-ledger/internal/config"
	"github.com/sjperalta/fintera-ledger/internal/database"
	"github.com/sjperalta/fintera-ledger/internal/handlers"
	"github.com/sjperalta/fintera-ledger/internal/jobs"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/services"
	"github.com/sjperalta/fintera-ledger/internal/storage"
	"github.com/sjperalta/fintera-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Fintera Ledger API
// @version 1.0
// @description Per-tenant double-entry ledger, financial statements and credit scoring for small retail businesses

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)
	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Let pending audit writes and archive copies land before stopping
	if !worker.Wait(10 * time.Second) {
		logger.Warn("Background jobs still pending at shutdown", "stats", worker.GetStats())
	}
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)
		v1.POST("/auth/token", h.Auth.Token)

		// Everything below is scoped to the token's tenant
		tenant := v1.Group("")
		tenant.Use(middleware.Auth(cfg.JWTSecret), middleware.RequireTenant())
		{
			tenant.POST("/chart/seed", h.Chart.Seed)
			tenant.GET("/chart", h.Chart.Index)

			postings := tenant.Group("/postings")
			{
				postings.POST("/sales", h.Posting.Sale)
				postings.POST("/payments", h.Posting.Payment)
				postings.POST("/purchases", h.Posting.Purchase)
				postings.POST("/expenses", h.Posting.Expense)
				postings.POST("/cash-in", h.Posting.CashIn)
				postings.POST("/cash-out", h.Posting.CashOut)
				postings.POST("/returns", h.Posting.Return)
			}

			tenant.GET("/ledger/balance", h.Ledger.Balance)
			tenant.GET("/ledger/entries", h.Ledger.Entries)
			tenant.GET("/ledger/entries/:entry_id", h.Ledger.Entry)

			statements := tenant.Group("/statements")
			{
				statements.GET("/balance-general", h.Statement.BalanceGeneral)
				statements.GET("/estado-resultados", h.Statement.EstadoResultados)
				statements.GET("/export", h.Statement.Export)
			}

			tenant.POST("/shifts", h.Shift.Open)
			tenant.GET("/shifts", h.Shift.Index)
			tenant.GET("/shifts/:shift_id", h.Shift.Show)
			tenant.POST("/shifts/:shift_id/close", h.Shift.Close)

			tenant.GET("/score", h.Score.Show)
			tenant.GET("/audits", h.Audit.Index)
			tenant.GET("/jobs/stats", h.Job.Stats)
		}
	}

	return router
}
