package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName        = "knjizara"
	categoriesCacheKey = "categories:all"
)

// RedisClient кеширует дерево категорий
// Каталог читает категории на каждой странице, состав меняется редко -
// кеш инвалидируется при любой мутации категории
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient создает клиент Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromExisting оборачивает готовый клиент (для тестов с miniredis)
func NewRedisClientFromExisting(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// SetCategories сохраняет категории в кеш с TTL
func (r *RedisClient) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := r.client.Set(ctx, categoriesCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}

	return nil
}

// GetCategories получает категории из кеша
// Отсутствие ключа - не ошибка, возвращается nil (cache miss)
func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	data, err := r.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, "categories")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var categories []entity.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "categories")
	return categories, nil
}

// DeleteCategories инвалидирует кеш категорий
func (r *RedisClient) DeleteCategories(ctx context.Context) error {
	if err := r.client.Del(ctx, categoriesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}
