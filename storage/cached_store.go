package storage

import (
	"fmt"
	"io"

	"github.com/dgraph-io/ristretto/v2"
)

// CachedStore puts a cost-bounded read cache in front of a slow BackingStore.
// Reads are served from the cache when possible; writes go to the inner store
// first and refresh the cache only after they succeed.
type CachedStore struct {
	inner BackingStore
	cache *ristretto.Cache[uint32, []byte]
}

// NewCachedStore wraps inner with a read cache holding at most maxBytes of payload
func NewCachedStore(inner BackingStore, maxBytes int64) (*CachedStore, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("read cache size must be greater than 0")
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint32, []byte]{
		NumCounters: 10 * (maxBytes/PageSize + 1),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create read cache: %w", err)
	}

	return &CachedStore{
		inner: inner,
		cache: cache,
	}, nil
}

// ReadPage returns a private copy of the cached payload, loading it on a miss
func (cs *CachedStore) ReadPage(pageID PageID) ([]byte, error) {
	if data, ok := cs.cache.Get(uint32(pageID)); ok {
		return append([]byte{}, data...), nil
	}

	data, err := cs.inner.ReadPage(pageID)
	if err != nil {
		return nil, err
	}

	cs.cache.Set(uint32(pageID), append([]byte{}, data...), int64(len(data))+1)
	return data, nil
}

// WritePage writes through to the inner store.
// The cached copy is dropped first so a failed write cannot leave it stale.
func (cs *CachedStore) WritePage(pageID PageID, data []byte) error {
	cs.cache.Del(uint32(pageID))

	if err := cs.inner.WritePage(pageID, data); err != nil {
		return err
	}

	cs.cache.Set(uint32(pageID), append([]byte{}, data...), int64(len(data))+1)
	cs.cache.Wait()
	return nil
}

// Inner returns the wrapped store
func (cs *CachedStore) Inner() BackingStore {
	return cs.inner
}

// Close releases the cache and closes the inner store if it can be closed
func (cs *CachedStore) Close() error {
	cs.cache.Close()

	if closer, ok := cs.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
