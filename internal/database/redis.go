package database

import (
	"context"
	"time"

	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Redis is nil when REDIS_ADDR is unset; revocation then degrades to cookie clearing only.
var Redis *redis.Client

const revokedPrefix = "revoked_token:"

func InitRedis() {
	if config.AppConfig.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, session revocation disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, session revocation disabled")
		return
	}

	Redis = client
	logger.Info().Str("addr", config.AppConfig.RedisAddr).Msg("Connected to Redis")
}

// BlacklistToken stores a revoked token id until the token would have expired anyway.
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if Redis == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return Redis.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsTokenBlacklisted fails open when Redis is unavailable.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if Redis == nil || jti == "" {
		return false
	}
	n, err := Redis.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		logger.Warn().Err(err).Str("jti", jti).Msg("Revocation lookup failed")
		return false
	}
	return n > 0
}

// PingRedis returns "ok", "error" or "not configured" for the health check.
func PingRedis(ctx context.Context) string {
	if Redis == nil {
		return "not configured"
	}
	if err := Redis.Ping(ctx).Err(); err != nil {
		return "error"
	}
	return "ok"
}
