package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/config"
)

var Module = fx.Module("ratelimit",
	fx.Provide(New),
)

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Limiter {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RedisAddr == "" {
		return NoOp{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, rate limiting degraded", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return NewRedis(client, cfg.RateLimit.WebhookRate, cfg.RateLimit.WebhookBurst)
}
