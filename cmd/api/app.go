package main

import (
	"fmt"
	"time"

	"library-backend/internal/adapter/repository/gormkv"
	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/adapter/repository/rediskv"
	"library-backend/internal/config"
	"library-backend/internal/domain/uow"
	"library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/db"
	"library-backend/internal/infrastructure/logging"
	"library-backend/internal/infrastructure/metrics"
	bookuc "library-backend/internal/usecase/book"
	loanuc "library-backend/internal/usecase/loan"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func loadDotenv(files []string) { config.LoadDotenv(files...) }

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics

	db  *gorm.DB
	rdb *redis.Client

	repos uow.Repos
	uow   uow.UnitOfWork
}

func newApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	if cfg.StoreBackend == config.BackendRedis || cfg.IdempEnabled {
		if a.rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			a.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		a.repos = kv.NewRepos(rediskv.NewStore(a.rdb))
		a.uow = rediskv.NewUoW(a.rdb, log.Named("rediskv"))
	default:
		if a.db, err = db.OpenGorm(cfg.DBDriver, cfg.DSN()); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", cfg.DBDriver, err)
		}
		a.repos = kv.NewRepos(gormkv.NewStore(a.db))
		a.uow = gormkv.NewGormUoW(a.db)
	}
	log.Info("store ready",
		zap.String("backend", cfg.StoreBackend),
		zap.String("driver", cfg.DBDriver),
		zap.String("env", cfg.AppEnv))
	return a, nil
}

func (a *app) loanConfig() loanuc.Config {
	return loanuc.Config{
		LoanPeriod:   time.Duration(a.cfg.LoanPeriodDays) * 24 * time.Hour,
		Reactivation: loanuc.ReactivationPolicy(a.cfg.ReactivationPolicy),
	}
}

func (a *app) books() *bookuc.Usecase {
	return bookuc.NewUsecase(a.repos, a.uow, a.log, a.metrics)
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
