package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseCaseFunc(t *testing.T) {
	var uc UseCase[string, int] = UseCaseFunc[string, int](func(_ context.Context, cmd string) (int, error) {
		if cmd == "" {
			return 0, errors.New("empty")
		}
		return len(cmd), nil
	})

	n, err := uc.Execute(context.Background(), "latte")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = uc.Execute(context.Background(), "")
	assert.EqualError(t, err, "empty")
}
