package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"market/analyzer/internal/catalog"
	"market/analyzer/internal/config"
	"market/analyzer/internal/handlers"
	"market/analyzer/internal/queue"
	"market/analyzer/internal/repository"
	"market/analyzer/internal/service"
	"market/analyzer/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Catalog      *catalog.Service
	Service      *service.Service
	Repository   repository.ItemRepository
	Queue        queue.Queue
	StateManager state.StateManager
	Workers      *service.MirrorWorkers
	Server       *http.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Catalog: catalog.NewService(),
	}

	mirror, err := container.initMirror(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}

	container.Service = service.NewService(container.Catalog, mirror, container.StateManager)

	router := handlers.NewRouter(handlers.New(container.Service))
	container.Server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return container, nil
}

func (c *Container) initMirror(ctx context.Context) (service.Mirror, error) {
	cfg := c.Config
	if cfg.Mirror.Mode == config.MirrorModeNone {
		log.Info("Durable-store mirror disabled")
		return service.NewNopMirror(), nil
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	c.db = db

	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("✅ Connected to Postgres successfully")

	itemRepo := repository.NewItemRepository(db)
	if err := itemRepo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	c.Repository = itemRepo

	if cfg.Mirror.Mode == config.MirrorModeDirect {
		return itemRepo, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	c.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		return nil, err
	}
	c.Queue = redisQueue
	c.StateManager = state.NewRedisStateManager(rdb)
	c.Workers = service.NewMirrorWorkers(redisQueue, itemRepo, c.StateManager, cfg.Redis.MinIdleTime)

	return service.NewQueueMirror(redisQueue), nil
}

// Run serves the API, and the mirror workers in queue mode, until ctx is done.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 Listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("🛑 Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeoutDuration())
		defer cancel()
		return c.Server.Shutdown(shutdownCtx)
	})

	if c.Workers != nil {
		g.Go(func() error {
			return c.Workers.Run(ctx, c.Config.Mirror.Workers)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
