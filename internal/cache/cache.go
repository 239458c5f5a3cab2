package cache

import (
	"context"
	"time"

	"tokokas/backend/internal/domain"
)

type ShiftDetailCache interface {
	Get(ctx context.Context, key string) (*domain.ShiftDetailResponse, bool, error)
	Set(ctx context.Context, key string, value *domain.ShiftDetailResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopShiftDetailCache struct{}

func (NoopShiftDetailCache) Get(_ context.Context, _ string) (*domain.ShiftDetailResponse, bool, error) {
	return nil, false, nil
}

func (NoopShiftDetailCache) Set(_ context.Context, _ string, _ *domain.ShiftDetailResponse, _ time.Duration) error {
	return nil
}

func (NoopShiftDetailCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
