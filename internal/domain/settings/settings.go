package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
)

var (
	ErrNotFound         = errors.New("settings: not found")
	ErrInvalidHours     = errors.New("settings: hours must use HH:MM")
	ErrInvalidAmount    = errors.New("settings: amounts must not be negative")
	ErrNoPaymentMethods = errors.New("settings: at least one configured payment method must stay enabled")
)

// FallbackMinOrderAmount applies when the stored minimum is not positive.
const FallbackMinOrderAmount int64 = 5000

var hoursPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Settings is the singleton café configuration row.
type Settings struct {
	CafeName        string
	Address         string
	Phone           string
	OpenTime        string
	CloseTime       string
	Description     string
	DeliveryEnabled bool
	MinOrderAmount  int64
	DeliveryFee     int64
	Payments        payment.Toggles
	UpdatedAt       time.Time
}

func Default() *Settings {
	return &Settings{
		CafeName:        "Ajabo Coffee",
		Address:         "Toshkent shahar, Amir Temur ko'chasi 108",
		Phone:           "+998 71 123 45 67",
		OpenTime:        "08:00",
		CloseTime:       "22:00",
		Description:     "Eng mazali kofe va taomlar sizni kutmoqda!",
		DeliveryEnabled: true,
		MinOrderAmount:  30000,
		DeliveryFee:     10000,
		Payments: payment.Toggles{
			payment.MethodCash:   true,
			payment.MethodClick:  true,
			payment.MethodPayme:  true,
			payment.MethodUzum:   true,
			payment.MethodPaynet: true,
		},
	}
}

// EffectiveMinOrderAmount returns the minimum order total to enforce.
func (s *Settings) EffectiveMinOrderAmount() int64 {
	if s == nil || s.MinOrderAmount <= 0 {
		return FallbackMinOrderAmount
	}
	return s.MinOrderAmount
}

// Validate checks the row against the resolver so that the storefront always has a method to offer.
func (s *Settings) Validate(r *payment.Resolver) error {
	if !hoursPattern.MatchString(s.OpenTime) || !hoursPattern.MatchString(s.CloseTime) {
		return fmt.Errorf("%w: %q-%q", ErrInvalidHours, s.OpenTime, s.CloseTime)
	}
	if s.MinOrderAmount < 0 || s.DeliveryFee < 0 {
		return ErrInvalidAmount
	}
	if len(r.Available(s.Payments)) == 0 {
		return ErrNoPaymentMethods
	}
	return nil
}

func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	c.Payments = make(payment.Toggles, len(s.Payments))
	for k, v := range s.Payments {
		c.Payments[k] = v
	}
	return &c
}

type Repository interface {
	// Get returns ErrNotFound until the row was saved once.
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
