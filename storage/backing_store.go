package storage

import (
	"fmt"
	"sync"
)

//go:generate mockgen -source backing_store.go -destination backing_store_mocks.go -package storage

// BackingStore is the slower medium of record for page payloads.
// Implementations return a freshly allocated slice from ReadPage; the buffer
// pool hands it to callers who may modify it in place. A page that has never
// been written reads as an empty payload. WritePage overwrites the page.
type BackingStore interface {
	ReadPage(pageID PageID) ([]byte, error)
	WritePage(pageID PageID, data []byte) error
}

// SyntheticPage returns the deterministic content "Data_of_Page_<id>"
func SyntheticPage(pageID PageID) []byte {
	return []byte(fmt.Sprintf("Data_of_Page_%d", pageID))
}

// MemoryStore keeps page payloads in a map
type MemoryStore struct {
	pages    map[PageID][]byte
	generate func(PageID) []byte // content of pages never written, may be nil
	writes   uint64
	mutex    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
// Pages that were never written read as generate(id), or empty if generate is nil.
func NewMemoryStore(generate func(PageID) []byte) *MemoryStore {
	return &MemoryStore{
		pages:    make(map[PageID][]byte),
		generate: generate,
	}
}

// ReadPage returns a copy of the stored payload
func (ms *MemoryStore) ReadPage(pageID PageID) ([]byte, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if data, exists := ms.pages[pageID]; exists {
		return append([]byte{}, data...), nil
	}
	if ms.generate != nil {
		return ms.generate(pageID), nil
	}
	return []byte{}, nil
}

// WritePage stores a copy of data under pageID
func (ms *MemoryStore) WritePage(pageID PageID, data []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.pages[pageID] = append([]byte{}, data...)
	ms.writes++
	return nil
}

// Stored reports the payload last written for pageID
func (ms *MemoryStore) Stored(pageID PageID) ([]byte, bool) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	data, exists := ms.pages[pageID]
	return data, exists
}

// Writes returns the number of WritePage calls
func (ms *MemoryStore) Writes() uint64 {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.writes
}
