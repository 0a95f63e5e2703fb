package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
)

const defaultListLimit = 100

// Service answers read-side order queries for staff and customers.
type Service struct {
	repo     domain.Repository
	location *time.Location
}

func NewService(repo domain.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, location: loc}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validation.Wrap(errors.New("order: id is required"))
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}

type ListInput struct {
	Status string
	Limit  int
}

// List returns orders for the admin panel, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, in ListInput) ([]*domain.Order, error) {
	f := domain.Filter{Limit: in.Limit}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if in.Status != "" {
		st, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, validation.Wrap(err)
		}
		f.Statuses = []domain.Status{st}
	}
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return out, nil
}

// MyOrders lists a customer's orders by Telegram id or phone, newest first.
func (s *Service) MyOrders(ctx context.Context, telegramUserID, phone string) ([]*domain.Order, error) {
	telegramUserID = strings.TrimSpace(telegramUserID)
	if phone != "" {
		phone = profile.NormalizePhone(phone)
	}
	if telegramUserID == "" && phone == "" {
		return nil, validation.Wrap(errors.New("order: telegram id or phone is required"))
	}
	out, err := s.repo.List(ctx, domain.Filter{
		TelegramUserID: telegramUserID,
		PhoneNumber:    phone,
		Limit:          defaultListLimit,
	})
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return out, nil
}

// Receipt renders the text receipt of one order in the café's timezone.
func (s *Service) Receipt(ctx context.Context, id string) (string, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return o.Receipt(s.location), nil
}
