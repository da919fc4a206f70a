package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Contadores(t *testing.T) {
	m := New("test")
	m.OrderPlaced("ok")
	m.OrderPlaced("ok")
	m.OrderPlaced("payment_failed")
	m.WebhookEvent("intent.succeeded", "applied")
	m.SyncRun("ok", 2*time.Second, 3, 1, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersPlaced.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced.WithLabelValues("payment_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("intent.succeeded", "applied")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.syncRecords.WithLabelValues("created")))
}

func TestMetrics_NilEsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced("ok")
		m.WebhookEvent("x", "y")
		m.SyncRun("ok", time.Second, 0, 0, 0)
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.ObserveHTTP("GET", "/api/products", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="/api/products",status="200"} 1`), body)
}

func TestNew_DosInstanciasNoChocan(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}
