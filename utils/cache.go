// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tripmeet/config"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient holds persisted session snapshots. The polling
// fallback endpoint and the websocket push path read the same keys.
var SessionCacheClient *redis.Client

// InitSessionCache initializes the Redis client for session snapshots.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the session snapshot client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}
