package app

import (
	"context"
	"database/sql"

	"github.com/shiikun-cn/tarot-mcp/internal/config"
	"github.com/shiikun-cn/tarot-mcp/internal/db"
	"github.com/shiikun-cn/tarot-mcp/internal/logger"
	"github.com/shiikun-cn/tarot-mcp/internal/redis"
	"github.com/shiikun-cn/tarot-mcp/internal/usedset"

	_ "github.com/lib/pq"
)

type Infra struct {
	Store   usedset.Store
	cleanup func() error
}

// setupInfra picks the used-set backend: Redis when configured, else
// Postgres when configured, else process memory. An unreachable backend at
// startup logs a warning and falls back to memory instead of aborting.
func setupInfra(ctx context.Context, cfg config.Config) *Infra {

	if cfg.RedisAddr != "" {
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory session tracking", map[string]any{
				"addr":  cfg.RedisAddr,
				"error": err.Error(),
			})
		} else {
			logger.Info("redis ready", nil)
			return &Infra{
				Store:   usedset.NewRedisStore(client.Client),
				cleanup: client.Close,
			}
		}
	}

	if cfg.DatabaseDSN != "" {
		store, cleanup, err := setupPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Warn("database unavailable, falling back to in-memory session tracking", map[string]any{
				"error": err.Error(),
			})
		} else {
			logger.Info("database ready", nil)
			return &Infra{Store: store, cleanup: cleanup}
		}
	}

	logger.Info("using in-memory session tracking", nil)
	return &Infra{Store: usedset.NewMemoryStore()}
}

func setupPostgres(ctx context.Context, dsn string) (usedset.Store, func() error, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	if err := db.RunUsedSetMigration(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	return usedset.NewPostgresStore(&db.DB{DB: sqlDB}), sqlDB.Close, nil
}
