package order

import (
	"context"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
)

type IDGenerator interface {
	NewID() string
}

// RateLimiter bounds how many orders one client identity may create per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type SettingsReader interface {
	Current(ctx context.Context) (*settings.Settings, error)
}

type LinkGenerator interface {
	Generate(m payment.Method, req payment.Request, userAgent string) (string, bool)
}
