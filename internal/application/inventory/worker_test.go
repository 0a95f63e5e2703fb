package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlers map[string]domoutbox.Handler

func (h handlers) Subscribe(name string, fn domoutbox.Handler) { h[name] = fn }

type recordingUseCase struct {
	calls []DeductStockInput
	err   error
}

func (u *recordingUseCase) Execute(_ context.Context, in DeductStockInput) (*DeductStockResult, error) {
	u.calls = append(u.calls, in)
	if u.err != nil {
		return nil, u.err
	}
	return &DeductStockResult{Applied: true}, nil
}

type recordingReporter struct{ errs []error }

func (r *recordingReporter) Report(_ context.Context, err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}

func TestWorkerDeductsOnceOrderIsAccepted(t *testing.T) {
	subs := handlers{}
	uc := &recordingUseCase{}
	NewWorker(subs, uc, nil, nil).Start()
	require.Contains(t, subs, "order.created")
	require.Contains(t, subs, "order.status_changed")

	ctx := context.Background()
	o := domorder.Order{ID: "o1", ProductName: "Cola", Quantity: 2, Status: domorder.StatusPendingPayment, UpdatedAt: time.Now()}

	// awaiting payment: nothing to do yet
	require.NoError(t, subs["order.created"](ctx, domorder.NewOrderCreatedEvent(&o)))
	assert.Empty(t, uc.calls)

	o.Status = domorder.StatusCancelled
	require.NoError(t, subs["order.status_changed"](ctx, domorder.NewOrderStatusChangedEvent(&o, domorder.StatusPendingPayment, domorder.ActorSystem)))
	assert.Empty(t, uc.calls)

	o.Status = domorder.StatusPending
	require.NoError(t, subs["order.status_changed"](ctx, domorder.NewOrderStatusChangedEvent(&o, domorder.StatusPendingPayment, domorder.ActorSystem)))
	require.Len(t, uc.calls, 1)
	assert.Equal(t, DeductStockInput{OrderID: "o1", ProductName: "Cola", Quantity: 2}, uc.calls[0])

	o.WarehouseDeducted = true
	o.Status = domorder.StatusReady
	require.NoError(t, subs["order.status_changed"](ctx, domorder.NewOrderStatusChangedEvent(&o, domorder.StatusPending, domorder.ActorAdmin)))
	assert.Len(t, uc.calls, 1)
}

func TestWorkerSwallowsFailures(t *testing.T) {
	subs := handlers{}
	uc := &recordingUseCase{err: errors.New("db down")}
	rep := &recordingReporter{}
	NewWorker(subs, uc, rep, nil).Start()

	o := domorder.Order{ID: "o1", ProductName: "Cola", Quantity: 1, Status: domorder.StatusPending}
	err := subs["order.created"](context.Background(), domorder.NewOrderCreatedEvent(&o))
	assert.NoError(t, err)
	require.Len(t, rep.errs, 1)
	assert.EqualError(t, rep.errs[0], "db down")
}
