package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/phoneverify"
	"github.com/MrEthical07/phoneverify/gateway/console"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeSource struct {
	snapshot phoneverify.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() phoneverify.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                         { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: phoneverify.MetricsSnapshot{
			Counters:   map[phoneverify.MetricID]uint64{},
			Histograms: map[phoneverify.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderCountersAndHistogram(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: phoneverify.MetricsSnapshot{
			Counters: map[phoneverify.MetricID]uint64{
				phoneverify.MetricRegisterSuccess:    7,
				phoneverify.MetricOTPConfirmMismatch: 3,
			},
			Histograms: map[phoneverify.MetricID][]uint64{
				phoneverify.MetricDeliveryLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"phoneverify_register_success_total 7",
		"phoneverify_otp_confirm_mismatch_total 3",
		"phoneverify_store_failure_total 0",
		"phoneverify_delivery_latency_seconds_bucket{le=\"0.005\"} 1",
		"phoneverify_delivery_latency_seconds_bucket{le=\"+Inf\"} 36",
		"phoneverify_delivery_latency_seconds_count 36",
		"phoneverify_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderSkipsDisabledHistogram(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: phoneverify.MetricsSnapshot{
			Counters:   map[phoneverify.MetricID]uint64{phoneverify.MetricOTPIssued: 1},
			Histograms: map[phoneverify.MetricID][]uint64{},
		},
	})

	if out := exp.Render(); strings.Contains(out, "delivery_latency") {
		t.Fatalf("expected no histogram when latency is off, got:\n%s", out)
	}
}

func TestHandlerServesEngineMetrics(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	engine, err := phoneverify.New().
		WithRedis(rdb).
		WithGateway(console.New(&strings.Builder{})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Register(context.Background(), "081234567890"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rec := httptest.NewRecorder()
	NewExporter(engine).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, "phoneverify_register_success_total 1") {
		t.Fatalf("expected register counter, got:\n%s", body)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewExporter(fakeSource{
		snapshot: phoneverify.MetricsSnapshot{
			Counters: map[phoneverify.MetricID]uint64{
				phoneverify.MetricRegisterSuccess:   1000,
				phoneverify.MetricOTPConfirmSuccess: 800,
				phoneverify.MetricDeliveryFailure:   12,
			},
			Histograms: map[phoneverify.MetricID][]uint64{
				phoneverify.MetricDeliveryLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
