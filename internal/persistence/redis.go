package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/config"
)

// defaultRedisDialTimeout matches the go-redis client default.
const defaultRedisDialTimeout = 5 * time.Second

// Redis holds the client backing the session cache.
type Redis struct {
	Client *redis.Client
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeoutMs > 0 {
		opts.DialTimeout = cfg.DialTimeout()
	}
	if cfg.IOTimeoutMs > 0 {
		opts.ReadTimeout = cfg.IOTimeout()
		opts.WriteTimeout = cfg.IOTimeout()
	}
	return opts
}

// NewRedis builds the client and pings it once within the dial timeout. An
// unreachable server is logged, not fatal: sessions then fail to issue and
// bearer validation fails closed until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts := redisOptions(cfg)
	client := redis.NewClient(opts)

	pingTimeout := opts.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultRedisDialTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", opts.PoolSize),
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, session cache degraded", append(fields, zap.Error(err))...)
	} else {
		logger.Info("connected to redis", fields...)
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
