package storage

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
)

// Setup helper for buffer pool benchmarks
func setupBufferPool(b *testing.B, poolSize uint32, algorithm string) (*BufferPoolManager, func()) {
	b.Helper()

	fs, err := NewFileStore(filepath.Join(b.TempDir(), "bench_bpm.db"), PageSize)
	if err != nil {
		b.Fatal(err)
	}

	bpm, err := NewBufferPoolManagerWithReplacer(poolSize, fs, NewReplacer(algorithm, poolSize))
	if err != nil {
		b.Fatal(err)
	}

	cleanup := func() {
		bpm.Close()
	}

	return bpm, cleanup
}

// Benchmark page fetching (cache hits)
func BenchmarkBufferPoolFetchPageCacheHit(b *testing.B) {
	bpm, cleanup := setupBufferPool(b, 100, "lru")
	defer cleanup()

	if _, err := bpm.FetchPage(1); err != nil {
		b.Fatal(err)
	}
	bpm.UnpinPage(1, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bpm.FetchPage(1); err != nil {
			b.Fatal(err)
		}
		bpm.UnpinPage(1, false)
	}
}

// Benchmark page fetching (cache misses)
func BenchmarkBufferPoolFetchPageCacheMiss(b *testing.B) {
	bpm, cleanup := setupBufferPool(b, 10, "lru") // Small pool to force evictions
	defer cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pageID := PageID(i % 100)
		if _, err := bpm.FetchPage(pageID); err != nil {
			b.Fatal(err)
		}
		bpm.UnpinPage(pageID, false)
	}
}

// Benchmark dirty page write-back on eviction
func BenchmarkBufferPoolDirtyEviction(b *testing.B) {
	bpm, cleanup := setupBufferPool(b, 10, "lru")
	defer cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pageID := PageID(i % 100)
		if _, err := bpm.FetchPage(pageID); err != nil {
			b.Fatal(err)
		}
		bpm.UnpinPage(pageID, true)
	}
}

// Benchmark random access with both replacement policies
func BenchmarkBufferPoolRandomAccess(b *testing.B) {
	for _, algorithm := range []string{"lru", "2q"} {
		b.Run(algorithm, func(b *testing.B) {
			bpm, cleanup := setupBufferPool(b, 100, algorithm)
			defer cleanup()

			r := rand.New(rand.NewSource(42))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				pageID := PageID(r.Intn(500))
				if _, err := bpm.FetchPage(pageID); err != nil {
					b.Fatal(err)
				}
				bpm.UnpinPage(pageID, false)
			}

			b.ReportMetric(bpm.Stats().HitRate, "hit-rate")
		})
	}
}

// Benchmark a hot set mixed with a sequential scan
func BenchmarkBufferPoolScanResistance(b *testing.B) {
	for _, algorithm := range []string{"lru", "2q"} {
		b.Run(algorithm, func(b *testing.B) {
			bpm, cleanup := setupBufferPool(b, 50, algorithm)
			defer cleanup()

			scan := PageID(1000)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				pageID := PageID(i % 20)
				if i%2 == 1 {
					pageID = scan
					scan++
				}
				if _, err := bpm.FetchPage(pageID); err != nil {
					b.Fatal(err)
				}
				bpm.UnpinPage(pageID, false)
			}

			b.ReportMetric(bpm.Stats().HitRate, "hit-rate")
		})
	}
}

// Benchmark buffer pool with different pool sizes
func BenchmarkBufferPoolSizes(b *testing.B) {
	for _, size := range []uint32{10, 50, 100, 500, 1000} {
		b.Run(fmt.Sprintf("PoolSize%d", size), func(b *testing.B) {
			bpm, cleanup := setupBufferPool(b, size, "lru")
			defer cleanup()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				pageID := PageID(i % 1000)
				if _, err := bpm.FetchPage(pageID); err != nil {
					b.Fatal(err)
				}
				bpm.UnpinPage(pageID, false)
			}
		})
	}
}

// Benchmark dirty page flushes
func BenchmarkBufferPoolFlushDirtyPages(b *testing.B) {
	bpm, cleanup := setupBufferPool(b, 100, "lru")
	defer cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for id := PageID(0); id < 50; id++ {
			bpm.FetchPage(id)
			bpm.UnpinPage(id, true)
		}
		b.StartTimer()

		if err := bpm.FlushAllPages(); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark concurrent fetch/unpin from many goroutines
func BenchmarkBufferPoolParallel(b *testing.B) {
	bpm, cleanup := setupBufferPool(b, 64, "lru")
	defer cleanup()

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			pageID := PageID(r.Intn(256))
			if _, err := bpm.FetchPage(pageID); err != nil {
				b.Error(err)
				return
			}
			bpm.UnpinPage(pageID, false)
		}
	})
}
