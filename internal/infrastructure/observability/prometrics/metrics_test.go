package prometrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentsAreExposed(t *testing.T) {
	reg := New("ajabo", "")
	counters, histograms := Instruments(reg)

	counters[observability.MUsecaseRequests].Add(1,
		observability.L("use_case", "order.create"),
		observability.L("outcome", "success"),
	)
	histograms[observability.MUsecaseDuration].Bind(observability.L("use_case", "order.create")).Observe(0.02)

	// registering again returns the existing vector
	again := reg.Counter(string(observability.MUsecaseRequests), "dup", "use_case", "outcome")
	again.Add(1, observability.L("use_case", "order.create"), observability.L("outcome", "success"))

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `ajabo_usecase_requests_total{outcome="success",use_case="order.create"} 2`)
	assert.Contains(t, string(body), `ajabo_usecase_duration_seconds_count{use_case="order.create"} 1`)
}
