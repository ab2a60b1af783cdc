package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const (
	roleCacheTTL        = 10 * time.Minute
	statusCountCacheTTL = time.Minute

	trackingUpdatesChannel = "parcel:tracking:updates"
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func roleCacheKey(email string) string {
	return "user:role:" + strings.ToLower(email)
}

// CacheUserRole stores a resolved role keyed by email.
func CacheUserRole(ctx context.Context, email, role string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, roleCacheKey(email), role, roleCacheTTL).Err()
}

// GetCachedUserRole retrieves a cached role. The second return value reports
// whether the cache held an entry.
func GetCachedUserRole(ctx context.Context, email string) (string, bool, error) {
	if RedisClient == nil {
		return "", false, nil
	}
	role, err := RedisClient.Get(ctx, roleCacheKey(email)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

// InvalidateUserRole drops the cached role after a role mutation so the next
// guard check resolves fresh.
func InvalidateUserRole(ctx context.Context, email string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, roleCacheKey(email)).Err()
}

// StatusCount is one slice of the admin dashboard's delivery-status chart.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

const statusCountKey = "parcels:status-count"

// CacheStatusCounts stores the delivery-status aggregation.
func CacheStatusCounts(ctx context.Context, counts []StatusCount) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, statusCountKey, data, statusCountCacheTTL).Err()
}

// GetCachedStatusCounts retrieves the cached aggregation, if present.
func GetCachedStatusCounts(ctx context.Context) ([]StatusCount, bool, error) {
	if RedisClient == nil {
		return nil, false, nil
	}
	data, err := RedisClient.Get(ctx, statusCountKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var counts []StatusCount
	if err := json.Unmarshal([]byte(data), &counts); err != nil {
		return nil, false, err
	}
	return counts, true, nil
}

// InvalidateStatusCounts drops the cached aggregation after any parcel
// mutation that changes a delivery status.
func InvalidateStatusCounts(ctx context.Context) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, statusCountKey).Err()
}

// PublishTrackingUpdate publishes a tracking event to Redis pub/sub so other
// instances can fan it out to their websocket clients.
func PublishTrackingUpdate(ctx context.Context, trackingID, status string, payload map[string]interface{}) error {
	if RedisClient == nil {
		return nil
	}

	updateData := map[string]interface{}{
		"tracking_id": trackingID,
		"status":      status,
		"data":        payload,
		"timestamp":   time.Now().Unix(),
	}

	data, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, trackingUpdatesChannel, data).Err()
}
