package bench

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
)

// curatedEndpoints lists what a reader of ../../fixtures would call an endpoint.
var curatedEndpoints = map[string]bool{
	"http_GET__users_id":       true,
	"http_POST__users":         true,
	"http_GET__healthz":        true,
	"http_GET__accounts_id":    true,
	"http_POST__accounts":      true,
	"http_GET__reports__id":    true,
	"http_DELETE__reports__id": true,
	"http_GET__orders":         true,
	"rpc_Orders_GetOrder":      true,
	"rpc_Orders_ListOrders":    true,
}

func BenchmarkDetectionQuality_Curated(b *testing.B) {
	scanner := newScanner(b, fixturesDir(b))
	var precision float64
	var recall float64

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := scanner.Run(context.Background())
		if err != nil {
			b.Fatalf("scan failed: %v", err)
		}
		precision, recall = endpointMetrics(result.Identities(), curatedEndpoints)
	}
	b.StopTimer()

	b.ReportMetric(precision, "precision")
	b.ReportMetric(recall, "recall")
}

func TestCuratedFixturesAreFullyRecalled(t *testing.T) {
	result, err := newScanner(t, fixturesDir(t)).Run(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	precision, recall := endpointMetrics(result.Identities(), curatedEndpoints)
	if recall != 1 {
		t.Fatalf("expected every curated endpoint to be found, recall=%.2f ids=%v", recall, result.Identities())
	}
	// Class-level @RequestMapping("/api") is reported as its own route.
	if precision < 0.9 {
		t.Fatalf("precision dropped to %.2f: %v", precision, result.Identities())
	}
}

func fixturesDir(tb testing.TB) string {
	tb.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		tb.Fatalf("failed to locate fixtures")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "fixtures")
}

func endpointMetrics(actual []string, expected map[string]bool) (precision float64, recall float64) {
	seen := make(map[string]bool, len(actual))
	tp := 0
	fp := 0
	for _, id := range actual {
		if seen[id] {
			continue
		}
		seen[id] = true
		if expected[id] {
			tp++
		} else {
			fp++
		}
	}
	fn := 0
	for id := range expected {
		if !seen[id] {
			fn++
		}
	}

	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	return precision, recall
}
