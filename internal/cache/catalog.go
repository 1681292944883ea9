package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/set-night/greenqash/internal/domain"
)

// CatalogCache keeps two copies of each catalog listing: a short-lived fresh
// copy served on every read and a long-lived last-known-good copy served only
// while the database is unreachable.
type CatalogCache struct {
	client   *redis.Client
	prefix   string
	freshTTL time.Duration
	staleTTL time.Duration
}

func NewCatalogCache(client *redis.Client, prefix string, freshTTL, staleTTL time.Duration) *CatalogCache {
	return &CatalogCache{client: client, prefix: prefix, freshTTL: freshTTL, staleTTL: staleTTL}
}

func (c *CatalogCache) freshKey(key string) string { return c.prefix + "catalog:" + key }
func (c *CatalogCache) staleKey(key string) string { return c.prefix + "catalog:stale:" + key }

func (c *CatalogCache) Load(ctx context.Context, key string) ([]domain.Task, bool, error) {
	return c.load(ctx, c.freshKey(key))
}

func (c *CatalogCache) LoadStale(ctx context.Context, key string) ([]domain.Task, bool, error) {
	return c.load(ctx, c.staleKey(key))
}

func (c *CatalogCache) load(ctx context.Context, redisKey string) ([]domain.Task, bool, error) {
	data, err := c.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", redisKey, err)
	}

	var entries []taskEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", redisKey, err)
	}
	tasks := make([]domain.Task, len(entries))
	for i, e := range entries {
		tasks[i] = e.toDomain()
	}
	return tasks, true, nil
}

func (c *CatalogCache) Save(ctx context.Context, key string, tasks []domain.Task) error {
	entries := make([]taskEntry, len(tasks))
	for i, t := range tasks {
		entries[i] = newTaskEntry(t)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.freshKey(key), data, c.freshTTL)
		pipe.Set(ctx, c.staleKey(key), data, c.staleTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save catalog %s: %w", key, err)
	}
	return nil
}

type taskEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Platform     string    `json:"platform"`
	RewardAmount int64     `json:"reward_amount"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newTaskEntry(t domain.Task) taskEntry {
	return taskEntry{
		ID:           t.ID.String(),
		Title:        t.Title,
		URL:          t.URL,
		Platform:     string(t.Platform),
		RewardAmount: t.RewardAmount,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}

func (e taskEntry) toDomain() domain.Task {
	t := domain.Task{
		Title:        e.Title,
		URL:          e.URL,
		Platform:     domain.Platform(e.Platform),
		RewardAmount: e.RewardAmount,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
	}
	t.ID, _ = uuid.Parse(e.ID)
	return t
}
