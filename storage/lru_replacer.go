package storage

import (
	"container/list"
	"sync"
)

// LRUReplacer implements LRU (Least Recently Used) replacement policy.
// The front of the list holds the most recently eligible frame, the back
// holds the next victim.
type LRUReplacer struct {
	capacity uint32
	lruList  *list.List
	lruMap   map[uint32]*list.Element
	mutex    sync.Mutex
}

// NewLRUReplacer creates a new LRU replacer
func NewLRUReplacer(capacity uint32) *LRUReplacer {
	return &LRUReplacer{
		capacity: capacity,
		lruList:  list.New(),
		lruMap:   make(map[uint32]*list.Element, capacity),
	}
}

// Touch moves the frame to the front, adding it if it is not tracked yet
func (lru *LRUReplacer) Touch(frameID uint32) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	if elem, exists := lru.lruMap[frameID]; exists {
		lru.lruList.MoveToFront(elem)
		return
	}

	lru.lruMap[frameID] = lru.lruList.PushFront(frameID)
}

// Remove drops a frame from the replacer
func (lru *LRUReplacer) Remove(frameID uint32) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	if elem, exists := lru.lruMap[frameID]; exists {
		lru.lruList.Remove(elem)
		delete(lru.lruMap, frameID)
	}
}

// PickVictim returns the least recently touched frame
func (lru *LRUReplacer) PickVictim() (uint32, bool) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	oldest := lru.lruList.Back()
	if oldest == nil {
		return 0, false
	}

	frameID := oldest.Value.(uint32)
	lru.lruList.Remove(oldest)
	delete(lru.lruMap, frameID)

	return frameID, true
}

// Size returns the number of evictable frames
func (lru *LRUReplacer) Size() uint32 {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	return uint32(lru.lruList.Len())
}
