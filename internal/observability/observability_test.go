package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.ObserveAPI("POST", "/api/evaluation/analyze-document", "200", 20*time.Millisecond)
	m.ObserveDocument("CSV", "ok", 12)
	m.ObserveAdvisor("disabled", 0)
	m.AddPersisted(3, 2)
	m.ApiInflightInc()
	m.ApiInflightDec()

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("POST", "/api/evaluation/analyze-document", "200")); got != 1 {
		t.Fatalf("api requests=%v", got)
	}
	if got := testutil.ToFloat64(m.documents.WithLabelValues("csv", "ok")); got != 1 {
		t.Fatalf("documents=%v", got)
	}
	if got := testutil.ToFloat64(m.advisorCalls.WithLabelValues("disabled")); got != 1 {
		t.Fatalf("advisor calls=%v", got)
	}
	if got := testutil.ToFloat64(m.highRiskActions); got != 2 {
		t.Fatalf("high risk actions=%v", got)
	}
	if got := testutil.ToFloat64(m.apiInflight); got != 0 {
		t.Fatalf("inflight=%v", got)
	}
}

func TestMetricsHandlerExposesStoreStatus(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if err := m.RegisterStoreStatus(func() bool { return true }); err != nil {
		t.Fatalf("RegisterStoreStatus: %v", err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "apns_store_connected 1") {
		t.Fatalf("store gauge missing from exposition")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveDocument("pdf", "ok", 0)
	m.AddPersisted(1, 1)
	if err := m.RegisterStoreStatus(func() bool { return false }); err != nil {
		t.Fatalf("nil RegisterStoreStatus: %v", err)
	}
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	t.Parallel()

	shutdown := InitOTel(context.Background(), nil, OtelConfig{Enabled: false})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestParseHeaders(t *testing.T) {
	t.Parallel()

	h := ParseHeaders(" api-key = abc ,bad, x=")
	if len(h) != 1 || h["api-key"] != "abc" {
		t.Fatalf("headers=%v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
