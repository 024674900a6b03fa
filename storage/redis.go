package storage

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

const trendingDestinationsKey = "listings:trending"

func InitializeRedis() {
	// Get Redis URL from environment, fallback to localhost for development
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
		log.Println("REDIS_URL not set, using localhost:6379 (development mode)")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	})

	log.Println("Redis initialized with address:", redisURL)
}

// IncrementListingViews bumps the per-listing view counter and the location
// trending set. The counter key is seeded from the persisted column first, so
// a cold or flushed Redis resumes from the stored total instead of restarting
// at 1 and clobbering the mirror. Returns the new counter value; 0 with an
// error when Redis is unreachable (callers fall back to the views column).
func IncrementListingViews(ctx context.Context, listingID uint, location string, storedViews int64) (int64, error) {
	key := listingViewsKey(listingID)
	if storedViews > 0 {
		if err := Redis.SetNX(ctx, key, storedViews, 0).Err(); err != nil {
			return 0, err
		}
	}
	views, err := Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if location != "" {
		Redis.ZIncrBy(ctx, trendingDestinationsKey, 1, location)
	}
	return views, nil
}

// TopDestinations returns up to n locations ordered by accumulated views.
func TopDestinations(ctx context.Context, n int64) ([]redis.Z, error) {
	return Redis.ZRevRangeWithScores(ctx, trendingDestinationsKey, 0, n-1).Result()
}

func listingViewsKey(listingID uint) string {
	return "listing:views:" + strconv.FormatUint(uint64(listingID), 10)
}
