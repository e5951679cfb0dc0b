// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tripdesk/config"

	"github.com/go-redis/redis/v8"
)

// IntentCacheClient holds pending booking intents.
var IntentCacheClient *redis.Client

// InitIntentCache initializes the Redis client used for pending booking intents.
func InitIntentCache() {
	IntentCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisIntentDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := IntentCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Intent Cache): %v", err)
	}
}

// GetIntentCacheClient returns the Redis client for pending booking intents.
func GetIntentCacheClient() *redis.Client {
	if IntentCacheClient == nil {
		InitIntentCache()
	}
	return IntentCacheClient
}
