package storage

import (
	"sync"
	"testing"
)

// TestParallelFetchUnpin hammers a small pool from many goroutines.
// Each goroutine pins at most one page at a time, so the pool never runs out.
func TestParallelFetchUnpin(t *testing.T) {
	const (
		workers    = 8
		iterations = 500
	)

	store := NewMemoryStore(SyntheticPage)
	bpm, err := NewBufferPoolManager(workers, store)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				pageID := PageID((worker*7 + i) % 32)
				frame, err := bpm.FetchPage(pageID)
				if err != nil {
					errs <- err
					return
				}
				if frame.PageID() != pageID {
					t.Errorf("Fetched frame holds page %d, wanted %d", frame.PageID(), pageID)
				}
				if err := bpm.UnpinPage(pageID, i%3 == 0); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Worker failed: %v", err)
	}

	stats := bpm.Stats()
	if stats.Hits+stats.Misses != workers*iterations {
		t.Errorf("Expected %d fetches, got %d", workers*iterations, stats.Hits+stats.Misses)
	}

	for _, pageID := range bpm.ResidentPages() {
		pins, _ := bpm.PinCount(pageID)
		if pins != 0 {
			t.Errorf("Page %d still pinned %d times", pageID, pins)
		}
	}
	checkInvariants(t, bpm)

	if err := bpm.FlushAllPages(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	if len(bpm.DirtyPages()) != 0 {
		t.Errorf("Expected no dirty pages after flush, got %v", bpm.DirtyPages())
	}
}

// TestParallelSharedPins pins the same pages from several goroutines at once
func TestParallelSharedPins(t *testing.T) {
	bpm, err := NewBufferPoolManager(4, NewMemoryStore(SyntheticPage))
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16

	var start, done sync.WaitGroup
	start.Add(1)
	for w := 0; w < workers; w++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			for _, id := range []PageID{1, 2} {
				if _, err := bpm.FetchPage(id); err != nil {
					t.Errorf("Fetch page %d: %v", id, err)
				}
			}
		}()
	}
	start.Done()
	done.Wait()

	for _, id := range []PageID{1, 2} {
		pins, resident := bpm.PinCount(id)
		if !resident || pins != workers {
			t.Errorf("Page %d: expected %d pins, got %d (resident=%v)", id, workers, pins, resident)
		}
	}

	if misses := bpm.Stats().Misses; misses != 2 {
		t.Errorf("Expected 2 misses, got %d", misses)
	}
	checkInvariants(t, bpm)
}
