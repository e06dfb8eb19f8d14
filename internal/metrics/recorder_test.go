package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// gathered returns the value of the named metric whose labels include all of
// the given pairs. Counters and gauges only.
func gathered(t *testing.T, r *Recorder, name string, labels ...string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels) {
				if c := m.GetCounter(); c != nil {
					return c.GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, pairs []string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		found := false
		for _, lp := range m.GetLabel() {
			if lp.GetName() == pairs[i] && lp.GetValue() == pairs[i+1] {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestRecorder_ObserveSum(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	r.ObserveSum(4, 100, 10*time.Millisecond, nil)
	r.ObserveSum(4, 100, 10*time.Millisecond, nil)
	r.ObserveSum(2, 50, time.Millisecond, errors.New("boom"))

	if got := gathered(t, r, "gridsum_sums_total", "status", StatusOK); got != 2 {
		t.Errorf("sums_total{status=ok} = %v, want 2", got)
	}
	if got := gathered(t, r, "gridsum_sums_total", "status", StatusFault); got != 1 {
		t.Errorf("sums_total{status=fault} = %v, want 1", got)
	}
	if got := gathered(t, r, "gridsum_elements_total"); got != 200 {
		t.Errorf("elements_total = %v, want 200 (failed sums excluded)", got)
	}
}

func TestRecorder_CustomClassifier(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("invalid")
	r := NewRecorder(func(err error) string {
		switch {
		case err == nil:
			return StatusOK
		case errors.Is(err, errInvalid):
			return StatusInvalid
		default:
			return StatusFault
		}
	})
	r.ObserveSum(1, 0, 0, errInvalid)

	if got := gathered(t, r, "gridsum_sums_total", "status", StatusInvalid); got != 1 {
		t.Errorf("sums_total{status=invalid} = %v, want 1", got)
	}
}

func TestRecorder_ActiveRequests(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	r.IncrementActiveRequests()
	r.IncrementActiveRequests()
	r.DecrementActiveRequests()

	if got := gathered(t, r, "gridsum_active_requests"); got != 1 {
		t.Errorf("active_requests = %v, want 1", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	r.ObserveSum(3, 9, time.Millisecond, nil)
	r.ObservePartition(3, time.Microsecond, nil)
	r.ObserveRequest("/sum", http.StatusOK)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()

	for _, want := range []string{
		"gridsum_sums_total",
		"gridsum_sum_duration_seconds",
		"gridsum_partition_duration_seconds",
		"gridsum_requests_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %s", want)
		}
	}
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("second NewRecorder panicked: %v", r)
		}
	}()
	a := NewRecorder(nil)
	b := NewRecorder(nil)
	a.ObserveSum(1, 1, 0, nil)

	if got := gathered(t, b, "gridsum_sums_total", "status", StatusOK); got != 0 {
		t.Errorf("recorders share state: got %v", got)
	}
}
