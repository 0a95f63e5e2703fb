package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	sent []Notification
	err  error
}

func (o *outbox) Send(_ context.Context, n Notification) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, n)
	return nil
}

type handlers map[string]domoutbox.Handler

func (h handlers) Subscribe(name string, fn domoutbox.Handler) { h[name] = fn }

type reporter struct{ errs []error }

func (r *reporter) Report(_ context.Context, err error, _ map[string]string) { r.errs = append(r.errs, err) }

func TestTranslateStatus(t *testing.T) {
	assert.Equal(t, "delivering", TranslateStatus(domorder.StatusOnWay))
	assert.Equal(t, "confirmed", TranslateStatus(domorder.StatusPending))
	assert.Equal(t, "ready", TranslateStatus(domorder.StatusReady))
	assert.Equal(t, "delivered", TranslateStatus(domorder.StatusDelivered))
	assert.Equal(t, "cancelled", TranslateStatus(domorder.StatusCancelled))
}

func TestNotifyOnWayDeliveryOrder(t *testing.T) {
	box := &outbox{}
	uc := NewNotifyUseCase(box, nil, nil)

	o := domorder.Order{
		ID: "o1", ProductName: "Lavash", Status: domorder.StatusOnWay,
		OrderType: domorder.TypeDelivery, TelegramUserID: "777",
	}
	res, err := uc.Execute(context.Background(), NotifyInput{Order: o})
	require.NoError(t, err)
	assert.True(t, res.Sent)
	require.Len(t, box.sent, 1)
	assert.Equal(t, Notification{
		OrderID: "o1", TelegramUserID: 777, Status: "delivering", ProductName: "Lavash", OrderType: "delivery",
	}, box.sent[0])
}

func TestNotifyResolvesRecipientByPhone(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileRepository()
	require.NoError(t, profiles.Upsert(ctx, &profile.Profile{TelegramID: "4242", Phone: "+998901234567", UpdatedAt: time.Now()}))

	box := &outbox{}
	uc := NewNotifyUseCase(box, profiles, nil)
	o := domorder.Order{ID: "o1", Status: domorder.StatusReady, PhoneNumber: "+998 90 123 45 67"}

	res, err := uc.Execute(ctx, NotifyInput{Order: o})
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, SkipNoRecipient, res.SkipReason)

	res, err = uc.Execute(ctx, NotifyInput{Order: o, LookupByPhone: true})
	require.NoError(t, err)
	assert.True(t, res.Sent)
	assert.Equal(t, int64(4242), box.sent[0].TelegramUserID)
}

func TestNotifySkipsAwaitingPayment(t *testing.T) {
	box := &outbox{}
	uc := NewNotifyUseCase(box, nil, nil)
	res, err := uc.Execute(context.Background(), NotifyInput{Order: domorder.Order{
		ID: "o1", Status: domorder.StatusPendingPayment, TelegramUserID: "1",
	}})
	require.NoError(t, err)
	assert.Equal(t, SkipAwaitingPayment, res.SkipReason)
	assert.Empty(t, box.sent)
}

func TestWorkerSwallowsSendFailures(t *testing.T) {
	subs := handlers{}
	box := &outbox{err: ErrRecipientBlocked}
	rep := &reporter{}
	NewWorker(subs, NewNotifyUseCase(box, nil, nil), rep, nil).Start()

	o := domorder.Order{ID: "o1", Status: domorder.StatusPending, TelegramUserID: "9"}
	err := subs["order.created"](context.Background(), domorder.NewOrderCreatedEvent(&o))
	assert.NoError(t, err)
	require.Len(t, rep.errs, 1)
	assert.True(t, errors.Is(rep.errs[0], ErrRecipientBlocked))
}

func TestWorkerIgnoresOrdersAwaitingPayment(t *testing.T) {
	subs := handlers{}
	box := &outbox{}
	NewWorker(subs, NewNotifyUseCase(box, nil, nil), nil, nil).Start()

	o := domorder.Order{ID: "o1", Status: domorder.StatusPendingPayment, TelegramUserID: "9"}
	require.NoError(t, subs["order.created"](context.Background(), domorder.NewOrderCreatedEvent(&o)))
	assert.Empty(t, box.sent)

	o.Status = domorder.StatusPending
	require.NoError(t, subs["order.status_changed"](context.Background(),
		domorder.NewOrderStatusChangedEvent(&o, domorder.StatusPendingPayment, domorder.ActorSystem)))
	require.Len(t, box.sent, 1)
	assert.Equal(t, StatusConfirmed, box.sent[0].Status)
}

func TestWorkerSkipsStatusesWithoutMessage(t *testing.T) {
	subs := handlers{}
	box := &outbox{}
	rep := &reporter{}
	NewWorker(subs, NewNotifyUseCase(box, nil, nil), rep, nil).Start()

	o := domorder.Order{ID: "o1", Status: domorder.StatusCancelled, TelegramUserID: "9"}
	require.NoError(t, subs["order.status_changed"](context.Background(),
		domorder.NewOrderStatusChangedEvent(&o, domorder.StatusPendingPayment, domorder.ActorSystem)))

	assert.Empty(t, box.sent)
	assert.Empty(t, rep.errs)
}

func TestNotifySkipsCancelledOrders(t *testing.T) {
	box := &outbox{}
	uc := NewNotifyUseCase(box, nil, nil)

	res, err := uc.Execute(context.Background(), NotifyInput{Order: domorder.Order{
		ID: "o1", Status: domorder.StatusCancelled, TelegramUserID: "9",
	}})
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, SkipUnsupportedStatus, res.SkipReason)
	assert.Empty(t, box.sent)
}

func TestNotifyMatchesProfileAcrossPhoneForms(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileRepository()
	require.NoError(t, profiles.Upsert(ctx, &profile.Profile{TelegramID: "4242", Phone: "+998901234567", UpdatedAt: time.Now()}))
	uc := NewNotifyUseCase(&outbox{}, profiles, nil)

	for _, phone := range []string{"+998901234567", "998901234567", "90 123 45 67"} {
		o := domorder.Order{ID: "o1", Status: domorder.StatusReady, PhoneNumber: profile.NormalizePhone(phone)}
		res, err := uc.Execute(ctx, NotifyInput{Order: o, LookupByPhone: true})
		require.NoError(t, err, phone)
		assert.True(t, res.Sent, phone)
	}
}
