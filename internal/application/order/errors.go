package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
)

var (
	ErrConflict          = domain.ErrConflict
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrValidation        = validation.ErrValidation
	ErrRepository        = errors.New("order: repository failure")
	ErrRateLimited       = errors.New("order: too many orders, try again later")
	ErrMethodUnavailable = errors.New("order: payment method is not available")
	ErrBelowMinimum      = errors.New("order: total is below the minimum order amount")
	ErrProductMissing    = errors.New("order: product is not on the menu")
)

// RateLimitError reports how long the client has to wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
