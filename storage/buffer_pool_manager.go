package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/exp/slices"
)

// BufferPoolManager caches a fixed number of pages from a BackingStore.
// It maps page IDs to frames, keeps pinned frames out of eviction, writes
// dirty pages back before reusing their frame, and asks a Replacer which
// unpinned frame to give up when the pool is full.
//
// All public methods are serialized by a single mutex: the page table, the
// frames and the replacer change together.
type BufferPoolManager struct {
	poolSize  uint32
	frames    []*Frame
	pageTable map[PageID]uint32 // resident page -> frame index
	freeList  []uint32          // indices of empty frames
	store     BackingStore
	replacer  Replacer
	metrics   *Metrics
	logger    *slog.Logger

	// Report unpin misuse as errors instead of ignoring it
	strictUnpin bool

	mutex sync.Mutex
}

// NewBufferPoolManager creates a buffer pool with LRU replacement
func NewBufferPoolManager(poolSize uint32, store BackingStore) (*BufferPoolManager, error) {
	return NewBufferPoolManagerWithReplacer(poolSize, store, NewLRUReplacer(poolSize))
}

// NewBufferPoolManagerWithReplacer creates a buffer pool with a specific replacement policy
func NewBufferPoolManagerWithReplacer(poolSize uint32, store BackingStore, replacer Replacer) (*BufferPoolManager, error) {
	if poolSize == 0 {
		return nil, fmt.Errorf("pool size must be greater than 0")
	}
	if store == nil {
		return nil, fmt.Errorf("backing store must not be nil")
	}
	if replacer == nil {
		return nil, fmt.Errorf("replacer must not be nil")
	}

	bpm := &BufferPoolManager{
		poolSize:  poolSize,
		frames:    make([]*Frame, poolSize),
		pageTable: make(map[PageID]uint32, poolSize),
		freeList:  make([]uint32, 0, poolSize),
		store:     store,
		replacer:  replacer,
		metrics:   NewMetrics(),
		logger:    slog.Default(),
	}

	for i := uint32(0); i < poolSize; i++ {
		bpm.frames[i] = newFrame(i)
		bpm.freeList = append(bpm.freeList, i)
	}

	return bpm, nil
}

// NewBufferPoolManagerFromConfig creates a buffer pool as described by config
func NewBufferPoolManagerFromConfig(config *Config, store BackingStore, logger *slog.Logger) (*BufferPoolManager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	bpm, err := NewBufferPoolManagerWithReplacer(config.PoolSize, store, NewReplacer(config.CacheReplacer, config.PoolSize))
	if err != nil {
		return nil, err
	}
	bpm.SetStrictUnpin(config.StrictUnpin)
	if logger != nil {
		bpm.SetLogger(logger)
	}
	return bpm, nil
}

// SetLogger replaces the logger used for pool events
func (bpm *BufferPoolManager) SetLogger(logger *slog.Logger) {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()
	bpm.logger = logger
}

// SetStrictUnpin makes UnpinPage return an error for non-resident or unpinned pages
func (bpm *BufferPoolManager) SetStrictUnpin(strict bool) {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()
	bpm.strictUnpin = strict
}

// GetPoolSize returns the pool size
func (bpm *BufferPoolManager) GetPoolSize() uint32 {
	return bpm.poolSize
}

// FetchPage returns the frame holding pageID, pinned once more for the caller.
// On a miss the page is read from the backing store into a free frame or
// into the frame of an evicted page. Fails with ErrPoolExhausted when every
// frame is pinned.
func (bpm *BufferPoolManager) FetchPage(pageID PageID) (*Frame, error) {
	if pageID == InvalidPageID {
		return nil, ErrInvalidPageID("FetchPage")
	}

	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	if frameID, exists := bpm.pageTable[pageID]; exists {
		bpm.metrics.RecordCacheHit()
		frame := bpm.frames[frameID]
		if frame.pinCount == 0 {
			bpm.replacer.Remove(frameID)
		}
		frame.pinCount++
		bpm.logger.Debug("page hit", "page", pageID, "frame", frameID, "pins", frame.pinCount)
		return frame, nil
	}

	bpm.metrics.RecordCacheMiss()

	frameID, err := bpm.getFrameID()
	if err != nil {
		return nil, err
	}

	data, err := bpm.store.ReadPage(pageID)
	if err != nil {
		bpm.freeList = append(bpm.freeList, frameID)
		return nil, ErrDiskRead("FetchPage", pageID, err)
	}

	frame := bpm.frames[frameID]
	frame.load(pageID, data)
	bpm.pageTable[pageID] = frameID
	bpm.logger.Debug("page loaded", "page", pageID, "frame", frameID)

	return frame, nil
}

// UnpinPage releases one pin on pageID and optionally marks it dirty.
// A frame whose pin count reaches zero becomes evictable.
// Unpinning a non-resident or unpinned page is ignored unless strict unpin is on.
func (bpm *BufferPoolManager) UnpinPage(pageID PageID, isDirty bool) error {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	frameID, exists := bpm.pageTable[pageID]
	if !exists {
		if bpm.strictUnpin {
			return ErrNotResident("UnpinPage", pageID)
		}
		return nil
	}

	frame := bpm.frames[frameID]
	if frame.pinCount == 0 {
		if bpm.strictUnpin {
			return ErrPageNotPinned("UnpinPage", pageID)
		}
		// Already evictable: keep its replacer position.
		if isDirty {
			frame.isDirty = true
		}
		return nil
	}

	frame.pinCount--
	if isDirty {
		frame.isDirty = true
	}

	if frame.pinCount == 0 {
		bpm.replacer.Touch(frameID)
	}

	return nil
}

// getFrameID returns an empty frame, evicting a page if necessary
func (bpm *BufferPoolManager) getFrameID() (uint32, error) {
	if len(bpm.freeList) > 0 {
		frameID := bpm.freeList[0]
		bpm.freeList = bpm.freeList[1:]
		return frameID, nil
	}

	return bpm.evictPage()
}

// evictPage empties the frame chosen by the replacer.
// A dirty victim is written back first; if that fails the victim keeps its
// page and goes back to the replacer.
func (bpm *BufferPoolManager) evictPage() (uint32, error) {
	frameID, ok := bpm.replacer.PickVictim()
	if !ok {
		return 0, ErrNoFreePages("FetchPage")
	}

	frame := bpm.frames[frameID]
	if frame.pinCount > 0 || frame.IsEmpty() {
		return 0, NewStorageError(ErrCodeInternal, "evictPage",
			fmt.Sprintf("replacer chose frame %d (page %d, pins %d)", frameID, frame.pageID, frame.pinCount), nil)
	}

	if frame.isDirty {
		if err := bpm.store.WritePage(frame.pageID, frame.data); err != nil {
			bpm.metrics.RecordFailedWrite()
			bpm.replacer.Touch(frameID)
			bpm.logger.Warn("write-back failed, eviction aborted", "page", frame.pageID, "frame", frameID, "error", err)
			return 0, ErrDiskWrite("evictPage", frame.pageID, err)
		}
		bpm.metrics.RecordDirtyPageFlush()
	}

	bpm.logger.Debug("page evicted", "page", frame.pageID, "frame", frameID, "dirty", frame.isDirty)

	delete(bpm.pageTable, frame.pageID)
	frame.reset()
	bpm.metrics.RecordPageEviction()

	return frameID, nil
}

// flushFrame writes a dirty frame back and clears its dirty flag.
// Caller holds the mutex.
func (bpm *BufferPoolManager) flushFrame(op string, frame *Frame) error {
	if err := bpm.store.WritePage(frame.pageID, frame.data); err != nil {
		bpm.metrics.RecordFailedWrite()
		bpm.logger.Warn("write-back failed", "page", frame.pageID, "frame", frame.frameID, "error", err)
		return ErrDiskWrite(op, frame.pageID, err)
	}

	frame.isDirty = false
	bpm.metrics.RecordDirtyPageFlush()
	return nil
}

// FlushPage writes pageID back if it is dirty
func (bpm *BufferPoolManager) FlushPage(pageID PageID) error {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	frameID, exists := bpm.pageTable[pageID]
	if !exists {
		return ErrNotResident("FlushPage", pageID)
	}

	frame := bpm.frames[frameID]
	if !frame.isDirty {
		return nil
	}
	return bpm.flushFrame("FlushPage", frame)
}

// FlushAllPages writes every dirty page back. A failed page stays dirty and
// flushing continues with the next one; the returned error counts the
// failures and wraps the first.
func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	var firstErr error
	failed := 0
	for _, frame := range bpm.frames {
		if frame.IsEmpty() || !frame.isDirty {
			continue
		}
		if err := bpm.flushFrame("FlushAllPages", frame); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to flush %d pages: %w", failed, firstErr)
	}
	return nil
}

// Close flushes all dirty pages and closes the backing store if it can be closed
func (bpm *BufferPoolManager) Close() error {
	flushErr := bpm.FlushAllPages()

	if closer, ok := bpm.store.(io.Closer); ok {
		if err := closer.Close(); err != nil && flushErr == nil {
			return err
		}
	}
	return flushErr
}

// PinCount returns the pin count of a resident page
func (bpm *BufferPoolManager) PinCount(pageID PageID) (int32, bool) {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	frameID, exists := bpm.pageTable[pageID]
	if !exists {
		return 0, false
	}
	return bpm.frames[frameID].pinCount, true
}

// ResidentPages returns the IDs of all resident pages in ascending order
func (bpm *BufferPoolManager) ResidentPages() []PageID {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	pages := make([]PageID, 0, len(bpm.pageTable))
	for pageID := range bpm.pageTable {
		pages = append(pages, pageID)
	}
	slices.Sort(pages)
	return pages
}

// DirtyPages returns the IDs of all dirty resident pages in ascending order
func (bpm *BufferPoolManager) DirtyPages() []PageID {
	bpm.mutex.Lock()
	defer bpm.mutex.Unlock()

	pages := make([]PageID, 0)
	for _, frame := range bpm.frames {
		if !frame.IsEmpty() && frame.isDirty {
			pages = append(pages, frame.pageID)
		}
	}
	slices.Sort(pages)
	return pages
}

// Stats returns hits, misses and hit rate along with the other counters.
// It has no side effects.
func (bpm *BufferPoolManager) Stats() MetricsSnapshot {
	return bpm.metrics.Snapshot()
}

// GetMetrics returns the buffer pool metrics
func (bpm *BufferPoolManager) GetMetrics() *Metrics {
	return bpm.metrics
}
