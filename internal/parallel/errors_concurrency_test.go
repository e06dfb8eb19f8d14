package parallel

import (
	"fmt"
	"sync"
	"testing"
)

// TestErrorCollectorHighContention verifies that ErrorCollector keeps the
// lowest-index error under contention from 1000 concurrent goroutines,
// repeated 100 times to increase confidence.
func TestErrorCollectorHighContention(t *testing.T) {
	for round := 0; round < 100; round++ {
		var ec ErrorCollector
		var wg sync.WaitGroup
		numGoroutines := 1000

		// Barrier to start all goroutines simultaneously
		barrier := make(chan struct{})

		wg.Add(numGoroutines)
		for i := 0; i < numGoroutines; i++ {
			go func(id int) {
				defer wg.Done()
				<-barrier
				ec.SetError(id, fmt.Errorf("error from goroutine %d", id))
			}(i)
		}

		close(barrier)
		wg.Wait()

		err := ec.Err()
		if err == nil {
			t.Fatalf("round %d: expected an error, got nil", round)
		}
		if err.Error() != "error from goroutine 0" {
			t.Errorf("round %d: expected lowest-index error, got %v", round, err)
		}
		if ec.Index() != 0 {
			t.Errorf("round %d: Index() = %d, want 0", round, ec.Index())
		}
		if ec.Count() != numGoroutines {
			t.Errorf("round %d: Count() = %d, want %d", round, ec.Count(), numGoroutines)
		}
	}
}

// TestErrorCollectorNilIgnored verifies that nil errors are correctly ignored
// even when set concurrently alongside real errors.
func TestErrorCollectorNilIgnored(t *testing.T) {
	var ec ErrorCollector
	var wg sync.WaitGroup

	// Even indices report nil, odd indices report real errors.
	wg.Add(1000)
	barrier := make(chan struct{})

	for i := 0; i < 1000; i++ {
		go func(id int) {
			defer wg.Done()
			<-barrier
			if id%2 == 0 {
				ec.SetError(id, nil)
				return
			}
			ec.SetError(id, fmt.Errorf("real error %d", id))
		}(i)
	}

	close(barrier)
	wg.Wait()

	if err := ec.Err(); err == nil || err.Error() != "real error 1" {
		t.Fatalf("expected real error 1, got %v", err)
	}
	if ec.Count() != 500 {
		t.Errorf("Count() = %d, want 500", ec.Count())
	}
}

func TestErrorCollectorEmpty(t *testing.T) {
	var ec ErrorCollector
	if ec.Err() != nil {
		t.Error("zero value should hold no error")
	}
	if ec.Index() != -1 {
		t.Errorf("Index() = %d, want -1", ec.Index())
	}
}
