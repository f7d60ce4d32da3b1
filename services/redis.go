package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"wordduel/config"
	"wordduel/models"

	"github.com/go-redis/redis/v8"
)

const (
	PROFILE_CACHE_TTL  = 24 * time.Hour
	PROFILE_KEY_PREFIX = "user_profile:"
)

// NewRedisClient подключается к redis и проверяет соединение
func NewRedisClient(conf *config.ConfigSchema) (*redis.Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("AppConfig is not loaded")
	}

	redisConfig := conf.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisProfileCache кеширует профили пользователей для обогащения списков дуэлей
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: PROFILE_CACHE_TTL}
}

func (c *RedisProfileCache) GetProfile(ctx context.Context, userID string) (models.User, bool) {
	raw, err := c.client.Get(ctx, PROFILE_KEY_PREFIX+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Profile cache read error for %s: %v", userID, err)
		}
		return models.User{}, false
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		log.Printf("Profile cache decode error for %s: %v", userID, err)
		return models.User{}, false
	}
	return user, true
}

func (c *RedisProfileCache) SetProfile(ctx context.Context, user models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, PROFILE_KEY_PREFIX+user.UserID, raw, c.ttl).Err(); err != nil {
		log.Printf("Profile cache write error for %s: %v", user.UserID, err)
	}
}
