// Package settings serves the café configuration singleton.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
)

type Service struct {
	repo     domain.Repository
	resolver *payment.Resolver
	clock    func() time.Time
}

func NewService(repo domain.Repository, resolver *payment.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver, clock: time.Now}
}

// Current returns the stored settings, or the defaults until an admin saved them once.
func (s *Service) Current(ctx context.Context) (*domain.Settings, error) {
	cur, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Default(), nil
	case err != nil:
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	return cur, nil
}

type UpdateInput struct {
	CafeName        string `validate:"notblank"`
	Address         string
	Phone           string
	OpenTime        string `validate:"required"`
	CloseTime       string `validate:"required"`
	Description     string
	DeliveryEnabled bool
	MinOrderAmount  int64 `validate:"gte=0"`
	DeliveryFee     int64 `validate:"gte=0"`
	// Payments toggles methods by name; methods left out keep their current switch.
	Payments map[string]bool
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*domain.Settings, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	next := cur.Clone()
	next.CafeName = strings.TrimSpace(in.CafeName)
	next.Address = strings.TrimSpace(in.Address)
	next.Phone = strings.TrimSpace(in.Phone)
	next.OpenTime = strings.TrimSpace(in.OpenTime)
	next.CloseTime = strings.TrimSpace(in.CloseTime)
	next.Description = in.Description
	next.DeliveryEnabled = in.DeliveryEnabled
	next.MinOrderAmount = in.MinOrderAmount
	next.DeliveryFee = in.DeliveryFee
	for name, on := range in.Payments {
		m, perr := payment.ParseMethod(name)
		if perr != nil {
			return nil, validation.Wrap(fmt.Errorf("%w: %s", perr, name))
		}
		next.Payments[m] = on
	}
	if err := next.Validate(s.resolver); err != nil {
		return nil, validation.Wrap(err)
	}
	next.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("settings: save: %w", err)
	}
	return next, nil
}

// PublicView is what the storefront may see.
type PublicView struct {
	CafeName        string           `json:"cafe_name"`
	Address         string           `json:"address"`
	Phone           string           `json:"phone"`
	OpenTime        string           `json:"open_time"`
	CloseTime       string           `json:"close_time"`
	Description     string           `json:"description"`
	DeliveryEnabled bool             `json:"delivery_enabled"`
	MinOrderAmount  int64            `json:"min_order_amount"`
	DeliveryFee     int64            `json:"delivery_fee"`
	PaymentMethods  []payment.Option `json:"payment_methods"`
}

func (s *Service) Public(ctx context.Context) (*PublicView, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicView{
		CafeName:        cur.CafeName,
		Address:         cur.Address,
		Phone:           cur.Phone,
		OpenTime:        cur.OpenTime,
		CloseTime:       cur.CloseTime,
		Description:     cur.Description,
		DeliveryEnabled: cur.DeliveryEnabled,
		MinOrderAmount:  cur.EffectiveMinOrderAmount(),
		DeliveryFee:     cur.DeliveryFee,
		PaymentMethods:  s.resolver.Available(cur.Payments),
	}, nil
}
