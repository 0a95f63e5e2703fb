package profile

import (
	"context"
	"errors"
	"regexp"
	"time"
)

var ErrNotFound = errors.New("profile: not found")

var (
	phoneNoise = regexp.MustCompile(`[\s\-()]`)
	localPhone = regexp.MustCompile(`^\d{9}$`)
	fullPhone  = regexp.MustCompile(`^998\d{9}$`)
)

// Profile links a Telegram account to the phone number customers order with.
type Profile struct {
	TelegramID string
	Phone      string
	FullName   string
	Username   string
	UpdatedAt  time.Time
}

// NormalizePhone strips spaces, dashes and parentheses and rewrites Uzbek numbers
// as +998XXXXXXXXX. Anything else is returned stripped.
func NormalizePhone(phone string) string {
	phone = phoneNoise.ReplaceAllString(phone, "")
	switch {
	case localPhone.MatchString(phone):
		return "+998" + phone
	case fullPhone.MatchString(phone):
		return "+" + phone
	}
	return phone
}

type Repository interface {
	FindByPhone(ctx context.Context, phone string) (*Profile, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}
