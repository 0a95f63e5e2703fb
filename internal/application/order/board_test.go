package order

import (
	"context"
	"testing"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardLoadSweepsAndKeepsActive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := cashInput()
	in.PaymentMethod = "click"
	expired, err := f.create.Execute(ctx, in)
	require.NoError(t, err)
	active, err := f.create.Execute(ctx, cashInput())
	require.NoError(t, err)

	sweep := NewExpirySweepUseCase(f.repo, nil, 30*time.Minute, nil)
	board := NewBoard(f.repo, sweep, nil).WithClock(func() time.Time { return f.now.Add(45 * time.Minute) })
	require.NoError(t, board.Load(ctx))

	orders := board.Active()
	require.Len(t, orders, 1)
	assert.Equal(t, active.OrderID, orders[0].ID)

	got, err := f.repo.Get(ctx, expired.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestBoardApplyStreamsChanges(t *testing.T) {
	board := NewBoard(nil, nil, nil)
	changes, cancel := board.Subscribe(8)
	defer cancel()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	o := domain.Order{ID: "a", Status: domain.StatusPending, CreatedAt: base, UpdatedAt: base}

	assert.Equal(t, ChangeInsert, board.Apply(o).Kind)

	o.Status = domain.StatusReady
	o.UpdatedAt = base.Add(time.Minute)
	assert.Equal(t, ChangeUpdate, board.Apply(o).Kind)

	stale := o
	stale.Status = domain.StatusPending
	stale.UpdatedAt = base
	board.Apply(stale)
	require.Len(t, board.Active(), 1)
	assert.Equal(t, domain.StatusReady, board.Active()[0].Status)

	o.Status = domain.StatusDelivered
	o.UpdatedAt = base.Add(2 * time.Minute)
	assert.Equal(t, ChangeDelete, board.Apply(o).Kind)
	assert.Empty(t, board.Active())

	var kinds []ChangeKind
	for i := 0; i < 3; i++ {
		kinds = append(kinds, (<-changes).Kind)
	}
	assert.Equal(t, []ChangeKind{ChangeInsert, ChangeUpdate, ChangeDelete}, kinds)
}
