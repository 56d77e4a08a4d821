package history

import (
	"sync"
	"testing"
)

func TestStore_AppendAndSnapshot(t *testing.T) {
	s := New([]string{"frxEURUSD"}, 50)

	for i := 0; i < 10; i++ {
		s.RecordTick("frxEURUSD", float64(i))
	}

	snap := s.Snapshot("frxEURUSD")
	if len(snap) != 10 {
		t.Fatalf("expected 10 prices, got %d", len(snap))
	}
	for i, p := range snap {
		if p != float64(i) {
			t.Errorf("index %d: expected %v, got %v", i, float64(i), p)
		}
	}
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	s := New([]string{"frxEURUSD"}, 50)

	// 120 appends into a 50-slot buffer: only the last 50 survive, in order.
	for i := 0; i < 120; i++ {
		s.RecordTick("frxEURUSD", float64(i))
	}

	snap := s.Snapshot("frxEURUSD")
	if len(snap) != 50 {
		t.Fatalf("expected capacity 50, got %d", len(snap))
	}
	for i, p := range snap {
		if want := float64(70 + i); p != want {
			t.Errorf("index %d: expected %v, got %v", i, want, p)
		}
	}
	if s.Len("frxEURUSD") != 50 {
		t.Errorf("expected Len=50, got %d", s.Len("frxEURUSD"))
	}
}

func TestStore_UnknownSymbol(t *testing.T) {
	s := New([]string{"frxEURUSD"}, 50)

	// No-op write, empty read.
	s.RecordTick("frxUSDJPY", 1.23)
	if snap := s.Snapshot("frxUSDJPY"); len(snap) != 0 {
		t.Errorf("expected empty snapshot for unknown symbol, got %v", snap)
	}
	if snap := s.Snapshot("frxEURUSD"); len(snap) != 0 {
		t.Errorf("known symbol should still be empty, got %v", snap)
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New([]string{"frxEURUSD"}, 10)
	s.RecordTick("frxEURUSD", 1.0)
	s.RecordTick("frxEURUSD", 2.0)

	snap := s.Snapshot("frxEURUSD")
	snap[0] = 999.0

	again := s.Snapshot("frxEURUSD")
	if again[0] != 1.0 {
		t.Errorf("mutating a snapshot leaked into the store: got %v", again[0])
	}
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := New([]string{"frxEURUSD", "frxGBPUSD"}, 50)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// One writer per symbol, mimicking the feed goroutine.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			s.RecordTick("frxEURUSD", float64(i))
			s.RecordTick("frxGBPUSD", float64(i)+0.5)
		}
		close(done)
	}()

	// Several readers snapshotting concurrently, like alert workers.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := s.Snapshot("frxEURUSD")
				if len(snap) > 50 {
					t.Errorf("snapshot exceeded capacity: %d", len(snap))
					return
				}
				// Arrival order must hold even mid-stream.
				for i := 1; i < len(snap); i++ {
					if snap[i] != snap[i-1]+1 {
						t.Errorf("torn read: %v followed by %v", snap[i-1], snap[i])
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}

func TestStore_MinimumCapacity(t *testing.T) {
	s := New([]string{"x"}, 0)
	if s.Cap() != 2 {
		t.Errorf("expected minimum capacity 2, got %d", s.Cap())
	}
}
