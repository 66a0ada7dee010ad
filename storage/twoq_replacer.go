package storage

import (
	"container/list"
	"sync"
)

// TwoQReplacer implements a pin-aware variant of the 2Q replacement algorithm.
// It maintains two queues of evictable frames:
// - A1: frames that became evictable without being re-referenced (FIFO, "probationary")
// - A2: frames that were pinned again while evictable at least once (LRU, "protected")
// Victims are taken from A1 first, so a one-off scan cannot flush the hot set.
// The re-reference history of a frame is dropped when it is chosen as a victim,
// because a different page will occupy it.
type TwoQReplacer struct {
	mu sync.RWMutex

	a1    *list.List
	a1Map map[uint32]*list.Element

	a2    *list.List
	a2Map map[uint32]*list.Element

	// frames re-referenced since their page was loaded
	hot map[uint32]bool

	capacity int
}

// NewTwoQReplacer creates a new 2Q replacer sized for capacity frames
func NewTwoQReplacer(capacity int) *TwoQReplacer {
	if capacity < 1 {
		capacity = 1
	}

	return &TwoQReplacer{
		a1:       list.New(),
		a1Map:    make(map[uint32]*list.Element, capacity),
		a2:       list.New(),
		a2Map:    make(map[uint32]*list.Element, capacity),
		hot:      make(map[uint32]bool, capacity),
		capacity: capacity,
	}
}

// Touch makes a frame evictable, placing it in A2 if it has been re-referenced
func (r *TwoQReplacer) Touch(frameID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, exists := r.a1Map[frameID]; exists {
		r.a1.MoveToFront(elem)
		return
	}
	if elem, exists := r.a2Map[frameID]; exists {
		r.a2.MoveToFront(elem)
		return
	}

	if r.hot[frameID] {
		r.a2Map[frameID] = r.a2.PushFront(frameID)
		return
	}
	r.a1Map[frameID] = r.a1.PushFront(frameID)
}

// Remove drops a frame from both queues and records the re-reference
func (r *TwoQReplacer) Remove(frameID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, exists := r.a1Map[frameID]; exists {
		r.a1.Remove(elem)
		delete(r.a1Map, frameID)
		r.hot[frameID] = true
		return
	}

	if elem, exists := r.a2Map[frameID]; exists {
		r.a2.Remove(elem)
		delete(r.a2Map, frameID)
		r.hot[frameID] = true
	}
}

// PickVictim evicts from A1 first (oldest first), then from A2 (least recently used)
func (r *TwoQReplacer) PickVictim() (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, index := r.a1, r.a1Map
	if queue.Len() == 0 {
		queue, index = r.a2, r.a2Map
	}

	elem := queue.Back()
	if elem == nil {
		return 0, false
	}

	frameID := elem.Value.(uint32)
	queue.Remove(elem)
	delete(index, frameID)
	delete(r.hot, frameID)

	return frameID, true
}

// Size returns the number of evictable frames
func (r *TwoQReplacer) Size() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return uint32(r.a1.Len() + r.a2.Len())
}

// GetStats returns statistics about the 2Q queues
func (r *TwoQReplacer) GetStats() TwoQStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return TwoQStats{
		A1Size:    r.a1.Len(),
		A2Size:    r.a2.Len(),
		HotFrames: len(r.hot),
		Capacity:  r.capacity,
	}
}

// TwoQStats contains statistics about the 2Q replacer state
type TwoQStats struct {
	A1Size    int // Evictable frames on probation
	A2Size    int // Evictable protected frames
	HotFrames int // Frames with re-reference history, evictable or pinned
	Capacity  int
}
