package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	for _, p := range []string{"+998901234567", "998901234567", "901234567", "+998 (90) 123-45-67"} {
		assert.True(t, ValidPhone(p), p)
	}
	for _, p := range []string{"", "12345", "+7 900 123 45 67", "99890123456a"} {
		assert.False(t, ValidPhone(p), p)
	}
}

type sample struct {
	FullName string `validate:"notblank"`
	Phone    string `validate:"required,uzphone"`
	Quantity int    `validate:"gte=1"`
}

func TestStructCollectsFields(t *testing.T) {
	err := Struct(sample{FullName: "  ", Phone: "123", Quantity: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "full_name is required")
	assert.Contains(t, err.Error(), "phone must be a valid phone number")
	assert.Contains(t, err.Error(), "quantity must be at least 1")

	assert.NoError(t, Struct(sample{FullName: "Aziz", Phone: "901234567", Quantity: 1}))
}
