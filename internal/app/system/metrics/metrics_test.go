package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDownstream_Classes(t *testing.T) {
	cases := []struct {
		status int
		class  string
	}{
		{0, "transport_error"},
		{201, "2xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tc := range cases {
		c := metrics.DownstreamRequestsTotal.WithLabelValues("test-svc", tc.class)
		before := testutil.ToFloat64(c)
		metrics.RecordDownstream("test-svc", tc.status, 10*time.Millisecond)
		if got := testutil.ToFloat64(c); got != before+1 {
			t.Errorf("status %d: counter %s went %v -> %v", tc.status, tc.class, before, got)
		}
	}
}

func TestRecordDecision(t *testing.T) {
	c := metrics.AuthorizationDecisionsTotal.WithLabelValues("organizer", "not_authenticated")
	before := testutil.ToFloat64(c)
	metrics.RecordDecision("organizer", "not_authenticated")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("got %v, want %v", got, before+1)
	}
}

func TestHandler_Exposes(t *testing.T) {
	metrics.RecordCaller("anonymous")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "eventhub_gateway_caller_resolutions_total") {
		t.Fatal("expected caller resolution counter in exposition")
	}
}
