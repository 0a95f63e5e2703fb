package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinged struct{ n int }

func (pinged) EventName() string { return "test.pinged" }

func TestBusDeliversInOrderToEverySubscriber(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	var seen []int
	var second atomic.Int32

	bus.Subscribe("test.pinged", func(_ context.Context, e domoutbox.Event) error {
		mu.Lock()
		seen = append(seen, e.(pinged).n)
		mu.Unlock()
		return nil
	})
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error {
		second.Add(1)
		return errors.New("ignored")
	})

	ctx := context.Background()
	bus.Start(ctx)
	for i := 1; i <= 5; i++ {
		require.NoError(t, bus.Publish(ctx, pinged{n: i}))
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	bus.Stop(stopCtx)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, int32(5), second.Load())
	assert.ErrorIs(t, bus.Publish(ctx, pinged{n: 6}), ErrClosed)
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus(nil, WithConcurrency(1), WithHandlerTimeout(time.Second))
	handled := make(chan struct{}, 1)

	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error { panic("boom") })
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error {
		handled <- struct{}{}
		return nil
	})

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, pinged{}))

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran")
	}
	bus.Stop(ctx)
}

func TestPublishRespectsContextWhenQueueIsFull(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(1))
	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, pinged{}))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(short, pinged{}), context.DeadlineExceeded)
}

func TestStopReleasesPublisherBlockedOnFullQueue(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(1))
	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, pinged{n: 1}))

	blocked := make(chan error, 1)
	go func() { blocked <- bus.Publish(ctx, pinged{n: 2}) }()
	// let the publisher reach the full queue
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		bus.Stop(stopCtx)
		close(stopped)
	}()

	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("publisher still blocked after stop")
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop never returned")
	}
}
