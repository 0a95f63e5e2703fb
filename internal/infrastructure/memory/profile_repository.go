package memory

import (
	"context"
	"sync"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
)

type ProfileRepository struct {
	mu      sync.RWMutex
	byPhone map[string]*domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{byPhone: make(map[string]*domain.Profile)}
}

func (r *ProfileRepository) FindByPhone(ctx context.Context, phone string) (*domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byPhone[domain.NormalizePhone(phone)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProfileRepository) FindByTelegramID(ctx context.Context, telegramID string) (*domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byPhone {
		if p.TelegramID == telegramID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for phone, existing := range r.byPhone {
		if existing.TelegramID == p.TelegramID {
			delete(r.byPhone, phone)
		}
	}
	cp := *p
	cp.Phone = domain.NormalizePhone(p.Phone)
	r.byPhone[cp.Phone] = &cp
	return nil
}
