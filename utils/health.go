package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings the intent cache and stores the result.
func CheckHealth(ctx context.Context, client *redis.Client) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now()}
	if client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status.Redis = client.Ping(pingCtx).Err() == nil
		cancel()
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, client *redis.Client, interval time.Duration) {
	CheckHealth(ctx, client)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				CheckHealth(ctx, client)
			case <-ctx.Done():
				return
			}
		}
	}()
}
