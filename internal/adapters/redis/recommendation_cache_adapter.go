package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Время жизни кэшированной ленты рекомендаций.
const blendedTTL = 10 * time.Minute

// RedisRecommendationCache реализует RecommendationCachePort.
// Ключ включает лимит: выдачи разной длины кэшируются независимо.
type RedisRecommendationCache struct {
	client *redis.Client
}

// NewRedisRecommendationCache - конструктор.
func NewRedisRecommendationCache(client *redis.Client) (*RedisRecommendationCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis.Client cannot be nil")
	}
	return &RedisRecommendationCache{client: client}, nil
}

func blendedKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("recommendations:blended:%s:%d", userID, limit)
}

// GetBlended возвращает (nil, nil) при промахе.
func (c *RedisRecommendationCache) GetBlended(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecommendationCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	cacheLogger := logger.WithFields(port.Fields{
		"component": "RedisRecommendationCache",
		"user_id":   userID,
		"limit":     limit,
	})

	payload, err := c.client.Get(ctx, blendedKey(userID, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		cacheLogger.Warn("Cache read failed", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("failed to read recommendation cache: %w", err)
	}

	var recs []domain.RecommendationCandidate
	if err := json.Unmarshal(payload, &recs); err != nil {
		// Битая запись равносильна промаху; пусть истечет сама.
		cacheLogger.Warn("Cached payload is corrupted, treating as miss", port.Fields{"error": err.Error()})
		return nil, nil
	}

	cacheLogger.Debug("Cache hit.", port.Fields{"found": len(recs)})
	return recs, nil
}

// StoreBlended сохраняет готовую ленту с фиксированным TTL.
func (c *RedisRecommendationCache) StoreBlended(ctx context.Context, userID uuid.UUID, limit int, recs []domain.RecommendationCandidate) error {
	logger := contextkeys.LoggerFromContext(ctx)
	cacheLogger := logger.WithFields(port.Fields{
		"component": "RedisRecommendationCache",
		"user_id":   userID,
		"limit":     limit,
	})

	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, blendedKey(userID, limit), payload, blendedTTL).Err(); err != nil {
		cacheLogger.Warn("Cache write failed", port.Fields{"error": err.Error()})
		return fmt.Errorf("failed to write recommendation cache: %w", err)
	}

	cacheLogger.Debug("Cache updated.", port.Fields{"stored": len(recs)})
	return nil
}
