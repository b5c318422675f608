// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"strconv"
	"time"

	"flowdesk/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client.
var CacheClient *redis.Client

const unreadCountTTL = 10 * time.Minute

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

func unreadCountKey(userID string) string {
	return "unread_count:" + userID
}

// GetCachedUnreadCount reads the cached unread counter for a user.
// The second return reports a cache hit; a missing cache client is a
// miss, not an error.
func GetCachedUnreadCount(ctx context.Context, userID string) (int64, bool) {
	if CacheClient == nil {
		return 0, false
	}
	val, err := CacheClient.Get(ctx, unreadCountKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetCachedUnreadCount stores the unread counter for a user.
func SetCachedUnreadCount(ctx context.Context, userID string, count int64) {
	if CacheClient == nil {
		return
	}
	CacheClient.Set(ctx, unreadCountKey(userID), count, unreadCountTTL)
}

// InvalidateUnreadCount drops the cached unread counter after a
// notification is created, read, or deleted.
func InvalidateUnreadCount(ctx context.Context, userID string) {
	if CacheClient == nil {
		return
	}
	CacheClient.Del(ctx, unreadCountKey(userID))
}
