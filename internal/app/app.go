// Package app assembles the plantation backend from configuration: storage,
// cache, services, the HTTP router and the background worker.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/cache"
	"plantation-manager/backend/internal/config"
	"plantation-manager/backend/internal/database"
	"plantation-manager/backend/internal/handlers"
	"plantation-manager/backend/internal/middleware"
	"plantation-manager/backend/internal/monitoring"
	"plantation-manager/backend/internal/repositories"
	"plantation-manager/backend/internal/services"
	"plantation-manager/backend/internal/worker"
)

type App struct {
	Config *config.Config
	Pool   *database.DatabasePool
	// Cache is nil when Redis is disabled.
	Cache *cache.RedisCache

	References *repositories.ReferenceRepository
	Templates  *repositories.TemplateRepository

	Catalog    *services.CatalogService
	Plantation *services.PlantationServiceImpl
	Tasks      *services.TaskServiceImpl
	Seasons    *services.SeasonServiceImpl

	Health *monitoring.HealthChecker
}

// New opens the database and, when enabled, Redis, then builds every
// service. An unreachable Redis is logged and tolerated; the template
// cache falls through to the database.
func New(cfg *config.Config) (*App, error) {
	pool, err := database.NewDatabasePool(database.PoolConfigFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	a := &App{
		Config: cfg,
		Pool:   pool,
		Health: monitoring.NewHealthChecker(),
	}
	a.Health.Register("database", pool.HealthContext)

	if cfg.Redis.Enabled {
		a.Cache = cache.NewRedisCache(cache.ConfigFromRedis(cfg.GetRedisAddr(), cfg.Redis))
		if err := a.Cache.Health(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cfg.GetRedisAddr()).Msg("redis unreachable at startup")
		}
		a.Health.Register("redis", a.Cache.Health)
	}

	db := pool.DB
	farms := repositories.NewFarmRepository(db)
	tasks := repositories.NewTaskRepository(db)
	seasons := repositories.NewSeasonRepository(db)
	a.References = repositories.NewReferenceRepository(db)
	a.Templates = repositories.NewTemplateRepository(db)

	cached := services.NewCachedTemplateCatalog(a.Templates, a.Cache, cfg.Catalog.CacheTTL)
	generator := services.NewScheduleGenerator(cached, tasks)

	a.Catalog = services.NewCatalogService(a.References, a.Templates, cached)
	a.Plantation = services.NewPlantationService(farms, tasks, seasons, a.References, generator)
	a.Tasks = services.NewTaskService(tasks, farms)
	a.Seasons = services.NewSeasonService(seasons, farms)

	return a, nil
}

// Migrate brings the schema up to date.
func (a *App) Migrate() error {
	return database.Migrate(a.Pool.DB)
}

// Router builds the gin engine. ctx bounds background goroutines owned by
// middleware.
func (a *App) Router(ctx context.Context) *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.RequestLogger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", a.Health.HealthHandler())
	r.GET("/ready", a.Health.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())
	r.GET("/metrics/cache", a.cacheStats)

	api := r.Group("/api")
	api.Use(middleware.Authenticate(a.Config.Auth))
	api.Use(middleware.RateLimit(ctx, a.Config.RateLimit))
	handlers.Register(api,
		handlers.NewPlantationHandler(a.Plantation),
		handlers.NewTaskHandler(a.Tasks),
		handlers.NewSeasonHandler(a.Seasons),
	)

	return r
}

func (a *App) cacheStats(c *gin.Context) {
	if a.Cache == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	stats := a.Cache.Stats()
	stats["enabled"] = true
	c.JSON(http.StatusOK, stats)
}

// NewWorker returns a worker bound to the plantation jobs, or nil when
// Redis is disabled.
func (a *App) NewWorker() *worker.Worker {
	if a.Cache == nil {
		return nil
	}
	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient:  a.Cache.Client(),
		PollInterval: a.Config.Worker.PollInterval,
		Queues:       a.Config.Worker.Queues,
	})
	worker.RegisterJobs(w, a.Tasks, a.Plantation)
	return w
}

// JobQueue gives producers access to the worker queues, or nil when Redis
// is disabled.
func (a *App) JobQueue() *worker.JobQueue {
	if a.Cache == nil {
		return nil
	}
	return worker.NewJobQueue(a.Cache.Client())
}

func (a *App) Close() error {
	var firstErr error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.Pool.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
