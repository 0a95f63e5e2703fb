package memory

import (
	"context"
	"sync"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
)

type SettingsRepository struct {
	mu  sync.RWMutex
	row *domain.Settings
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.row == nil {
		return nil, domain.ErrNotFound
	}
	return r.row.Clone(), nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.row = s.Clone()
	return nil
}
