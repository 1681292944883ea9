package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/metrics"
)

// CatalogService reads active reward-bearing tasks.
type CatalogService struct {
	tasks TaskStore
	cache CatalogCache
	retry RetryPolicy
}

// NewCatalogService builds the catalog reader. cache may be nil.
func NewCatalogService(tasks TaskStore, cache CatalogCache, retry RetryPolicy) *CatalogService {
	return &CatalogService{tasks: tasks, cache: cache, retry: retry}
}

func catalogKey(platform *domain.Platform) string {
	if platform == nil {
		return "all"
	}
	return string(*platform)
}

// ListActiveTasks returns active tasks newest-first. When the store is
// unreachable the last listing cached for the same filter is served instead;
// with nothing cached the error wraps domain.ErrStoreUnavailable.
func (s *CatalogService) ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error) {
	key := catalogKey(platform)

	if s.cache != nil {
		tasks, ok, err := s.cache.Load(ctx, key)
		if err != nil {
			slog.Warn("catalog cache load failed", "key", key, "error", err)
		} else if ok {
			return tasks, nil
		}
	}

	tasks, err := retryRead(ctx, s.retry, func() ([]domain.Task, error) {
		return s.tasks.ListActiveTasks(ctx, platform)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) && s.cache != nil {
			stale, ok, cacheErr := s.cache.LoadStale(ctx, key)
			if cacheErr == nil && ok {
				slog.Warn("serving stale catalog", "key", key, "error", err)
				metrics.CatalogStaleServed.Inc()
				return stale, nil
			}
		}
		return nil, fmt.Errorf("list active tasks: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, key, tasks); err != nil {
			slog.Warn("catalog cache save failed", "key", key, "error", err)
		}
	}
	return tasks, nil
}

// GetTask reads a task straight from the store, bypassing the cache, so a
// task deactivated a moment ago is seen as inactive.
func (s *CatalogService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return retryRead(ctx, s.retry, func() (*domain.Task, error) {
		return s.tasks.GetTask(ctx, id)
	})
}
