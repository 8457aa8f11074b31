package locks

import (
	"github.com/recuerdos/tienda/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the optional Redis-backed locker. Without REDIS_ADDR the
// locker is nil and callers fall back to database-level guarantees alone.
var Module = fx.Module("locks",
	fx.Provide(newClient),
	fx.Provide(NewLocker),
)

func newClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, per-order locks disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
