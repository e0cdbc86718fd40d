package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/amirphl/lead-connect/app/handlers"
	"github.com/amirphl/lead-connect/app/logging"
	"github.com/amirphl/lead-connect/app/middleware"
	"github.com/amirphl/lead-connect/app/router"
	"github.com/amirphl/lead-connect/app/services"
	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/amirphl/lead-connect/config"
	"github.com/amirphl/lead-connect/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application holds the wired components and what must be released on shutdown
type Application struct {
	config      *config.Config
	logger      *zap.Logger
	store       *repository.DataStoreImpl
	users       repository.UserRepository
	shards      *repository.ShardStore
	actionLog   repository.ActionLogRepository
	coordinator *businessflow.StoreCoordinator
	stopFuncs   []func()
}

// newApplication wires the storage layer, the writer lock and the coordinator
func newApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app := &Application{config: cfg, logger: logger}

	dataDir := cfg.Storage.DataDir
	app.users = repository.NewUserRepository(filepath.Join(dataDir, "users.xlsx"), logger)
	campaigns := repository.NewCampaignRepository(filepath.Join(dataDir, "campaigns.xlsx"), logger)
	app.actionLog = repository.NewActionLogRepository(filepath.Join(dataDir, "action_logs.csv"))
	app.shards = repository.NewShardStore(repository.ShardStoreConfig{
		Dir:         filepath.Join(dataDir, "leads"),
		LegacyFile:  filepath.Join(dataDir, "leads.xlsx"),
		Format:      repository.SheetFormat(cfg.Storage.ShardFormat),
		ReadWorkers: cfg.Storage.ReadWorkers,
	}, logger)

	leads, err := app.initializeLeadRepository(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.store = repository.NewDataStore(app.users, campaigns, leads)

	lock, err := app.initializeStoreLock(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.coordinator = businessflow.NewStoreCoordinator(lock, logger)
	app.stopFuncs = append(app.stopFuncs, app.coordinator.Close)

	return app, nil
}

// initializeLeadRepository picks the configured lead backend
func (a *Application) initializeLeadRepository(ctx context.Context) (repository.LeadRepository, error) {
	switch a.config.Storage.LeadBackend {
	case config.BackendSQLite:
		db, err := repository.OpenSQLite(a.config.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.stopFuncs = append(a.stopFuncs, func() { _ = db.Close() })
		repo := repository.NewSQLiteLeadRepository(db, a.logger)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("Using sqlite lead backend", zap.String("path", a.config.SQLite.Path))
		return repo, nil

	case config.BackendPostgres:
		db, err := initializeDatabase(a.config.Database)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.stopFuncs = append(a.stopFuncs, func() { _ = sqlDB.Close() })
		}
		repo := repository.NewGormLeadRepository(db, a.logger)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("Using postgres lead backend", zap.String("host", a.config.Database.Host))
		return repo, nil

	default:
		a.logger.Info("Using sharded lead files", zap.String("dir", a.shards.Dir()))
		return a.shards, nil
	}
}

// initializeDatabase opens postgres with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func configurePool(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// initializeStoreLock returns the in-process lock, or a redis lock shared by every process on the data directory
func (a *Application) initializeStoreLock(ctx context.Context) (businessflow.StoreLock, error) {
	if a.config.Lock.Provider != config.LockRedis {
		return businessflow.NewMutexLock(), nil
	}

	opt, err := redis.ParseURL(a.config.Lock.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.stopFuncs = append(a.stopFuncs, func() { _ = client.Close() })

	a.logger.Info("Using redis writer lock", zap.String("key", a.config.Lock.Key))
	return businessflow.NewRedisLock(client, a.config.Lock.Key, a.config.Lock.TTL, a.config.Lock.WaitFor), nil
}

// startShardWatcher logs lead shard edits made outside this process
func (a *Application) startShardWatcher(ctx context.Context) error {
	if !a.config.Storage.WatchShards || a.config.Storage.LeadBackend != config.BackendShards {
		return nil
	}
	watcher, err := repository.NewShardWatcher(a.shards, a.config.Storage.WatchGrace, func(change repository.ShardChange) {
		a.logger.Warn("Lead shard changed outside the application; the next save may overwrite it",
			zap.String("file", change.File),
			zap.String("op", change.Op),
		)
	}, a.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return err
	}
	a.stopFuncs = append(a.stopFuncs, watcher.Stop)
	return nil
}

// newRouter builds the HTTP layer on top of the flows
func (a *Application) newRouter() (router.Router, error) {
	jwtCfg := a.config.JWT
	tokens, err := services.NewTokenService(jwtCfg.AccessTokenTTL, jwtCfg.Issuer, jwtCfg.Audience,
		jwtCfg.UseRSAKeys, jwtCfg.PrivateKey, jwtCfg.PublicKey, jwtCfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	timeout := a.config.Server.RequestTimeout
	h := router.Handlers{
		Auth: handlers.NewAuthHandler(businessflow.NewLoginFlow(a.users, tokens, a.logger), a.logger, timeout),
		CampaignAdmin: handlers.NewCampaignAdminHandler(
			businessflow.NewAdminCampaignFlow(a.store, a.coordinator, a.actionLog, a.logger), a.logger, timeout),
		Lead: handlers.NewLeadHandler(
			businessflow.NewLeadFlow(a.store, a.coordinator, a.actionLog, a.logger), a.logger, timeout),
		Dashboard: handlers.NewDashboardHandler(businessflow.NewDashboardFlow(a.store, a.logger), a.logger, timeout),
	}

	r := router.NewFiberRouter(h, middleware.NewAuthMiddleware(tokens), a.config.Server, a.config.Metrics, a.logger)
	r.SetupRoutes()
	return r, nil
}

// Close releases resources in reverse order of acquisition
func (a *Application) Close() {
	for i := len(a.stopFuncs) - 1; i >= 0; i-- {
		a.stopFuncs[i]()
	}
	a.stopFuncs = nil
	_ = a.logger.Sync()
}
