package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/campusintel/placement-engine/internal/cache"
	"github.com/campusintel/placement-engine/internal/database"
	"github.com/campusintel/placement-engine/internal/engine"
	"github.com/campusintel/placement-engine/internal/errors"
	"github.com/campusintel/placement-engine/internal/monitoring"
	"github.com/campusintel/placement-engine/internal/ratelimit"
	"github.com/campusintel/placement-engine/internal/security"
	"github.com/campusintel/placement-engine/internal/types"
)

// app bundles the services every handler needs.
type app struct {
	db        *database.DB
	repo      *database.Repository
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	cache     *cache.Cache
	limiter   *ratelimit.RateLimiter
	predictor *engine.Predictor
}

func main() {
	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	cacheTTL := getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute)
	ipLimit := getEnvIntOrDefault("IP_RATE_LIMIT_PER_MIN", 120)

	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer errors.SafeClose(db, "database")

	appMetrics := monitoring.NewMetrics()

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = ipLimit
	limiter := ratelimit.NewRateLimiter(limiterConfig, appMetrics)
	defer errors.SafeClose(limiter, "rate limiter")

	a := &app{
		db:        db,
		repo:      database.NewRepository(db),
		metrics:   appMetrics,
		logger:    appLogger,
		cache:     cache.NewCache(cacheTTL),
		limiter:   limiter,
		predictor: engine.NewPredictor(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}

	r := newRouter(a)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		appLogger.SystemLogger("startup", "listening on port "+port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.SystemLogger("shutdown", "signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	appLogger.SystemLogger("shutdown", "server exited")
}

// newRouter wires middleware and routes over the app services.
func newRouter(a *app) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(cors.Default())
	r.Use(a.limiter.IPRateLimitMiddleware())

	// Read-side caching. Writes invalidate the whole cache; the corpus is
	// small enough that recomputing is cheaper than tracking dependencies.
	r.Use(a.cache.Middleware(a.metrics,
		"/candidates", "/candidates/:id", "/candidates/:id/credibility",
		"/jobs", "/jobs/:id", "/outcomes", "/audit"))

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.metrics.GetStats())
	})
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.cache.Stats())
	})
	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pool": "database", "stats": a.db.GetPoolStats()})
	})
	r.GET("/ratelimit/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.limiter.GetStats())
	})

	r.POST("/candidates", a.handleSaveCandidate)
	r.GET("/candidates", a.handleListCandidates)
	r.GET("/candidates/:id", a.handleGetCandidate)
	r.DELETE("/candidates/:id", a.handleDeleteCandidate)
	r.GET("/candidates/:id/credibility", a.handleCredibility)
	r.POST("/candidates/:id/simulate", a.handleSimulate)

	r.POST("/jobs", a.handleSaveJob)
	r.GET("/jobs", a.handleListJobs)
	r.GET("/jobs/:id", a.handleGetJob)

	r.POST("/outcomes", a.handleRecordOutcome)
	r.GET("/outcomes", a.handleListOutcomes)

	r.POST("/match", a.handleMatch)
	r.POST("/allocate", a.limiter.EndpointRateLimitMiddleware("allocate", 30), a.handleAllocate)

	r.POST("/predict/train", a.handleTrain)
	r.POST("/predict", a.handlePredict)
	r.GET("/predict/importance", a.handleFeatureImportance)

	r.GET("/audit", a.handleAudit)

	r.POST("/seed", a.handleSeed)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// engine builds a fresh decision engine over the stored corpus. History is
// immutable once built, so each request batch gets a consistent snapshot.
func (a *app) engine() (*engine.Engine, error) {
	candidates, err := a.repo.ListCandidates()
	if err != nil {
		return nil, err
	}
	outcomes, err := a.repo.ListOutcomes()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.NewHistory(candidates, outcomes)), nil
}

func abortWithError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
	c.Abort()
}

func (a *app) loadCandidate(c *gin.Context, id string) (types.CandidateProfile, bool) {
	candidate, err := a.repo.GetCandidate(id)
	if stderrors.Is(err, database.ErrNotFound) {
		abortWithError(c, errors.NewNotFoundError("candidate", id))
		return types.CandidateProfile{}, false
	}
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to load candidate", err))
		return types.CandidateProfile{}, false
	}
	return candidate, true
}

func (a *app) loadJob(c *gin.Context, id string) (types.JobPosting, bool) {
	job, err := a.repo.GetJob(id)
	if stderrors.Is(err, database.ErrNotFound) {
		abortWithError(c, errors.NewNotFoundError("job", id))
		return types.JobPosting{}, false
	}
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to load job", err))
		return types.JobPosting{}, false
	}
	return job, true
}

// Helper functions for environment variables with defaults

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
