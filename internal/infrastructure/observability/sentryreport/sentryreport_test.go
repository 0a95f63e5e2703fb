package sentryreport

import (
	"context"
	"errors"
	"sync"
	"time"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *captureTransport) Configure(sentry.ClientOptions) {}
func (t *captureTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}
func (t *captureTransport) Flush(time.Duration) bool { return true }
func (t *captureTransport) Close()                     {}

func TestReportAttachesTags(t *testing.T) {
	tr := &captureTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@example.com/1", Transport: tr})
	require.NoError(t, err)

	r := NewWithHub(sentry.NewHub(client, sentry.NewScope()))
	r.Report(context.Background(), errors.New("stock backend down"), map[string]string{"effect": "stock_deduction"})

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 1)
	assert.Equal(t, "stock_deduction", tr.events[0].Tags["effect"])
}

func TestNewWithoutDSNIsNop(t *testing.T) {
	r, flush, err := New(Options{})
	require.NoError(t, err)
	flush(time.Second)
	r.Report(context.Background(), errors.New("ignored"), nil)
}
