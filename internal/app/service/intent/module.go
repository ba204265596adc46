package intent

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/remedyhub/entitlement/pkg/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newStore picks redis when redis.addr is configured and falls back to memory.
func newStore(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (Store, error) {
	if cfg.Redis.Addr == "" {
		log.Infow("intent store: in-memory")
		return NewMemoryStore(cfg.Redis.IntentTTL), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("intent store: redis ping: %w", err)
			}
			log.Infow("intent store: redis", "addr", cfg.Redis.Addr)
			return nil
		},
		OnStop: func(context.Context) error { return rdb.Close() },
	})
	return NewRedisStore(rdb, cfg.Redis.IntentTTL), nil
}

var Module = fx.Options(
	fx.Provide(newStore),
)
