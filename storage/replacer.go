package storage

//go:generate mockgen -source replacer.go -destination replacer_mocks.go -package storage

// Replacer tracks frames that are eligible for eviction.
// Allows different algorithms (LRU, 2Q, etc.)
type Replacer interface {
	// Touch marks a frame as the most recently eligible.
	// Called when the frame's pin count drops to zero.
	Touch(frameID uint32)

	// Remove stops tracking a frame. No-op when the frame is not tracked.
	// Called when an eligible frame is pinned again.
	Remove(frameID uint32)

	// PickVictim returns and stops tracking the frame to evict.
	// Returns false if no frame is eligible.
	PickVictim() (uint32, bool)

	// Size returns the number of evictable frames
	Size() uint32
}

// NewReplacer creates a replacer based on the specified algorithm
func NewReplacer(algorithm string, capacity uint32) Replacer {
	switch algorithm {
	case "2q":
		return NewTwoQReplacer(int(capacity))
	case "lru":
		return NewLRUReplacer(capacity)
	default:
		return NewLRUReplacer(capacity)
	}
}

// validReplacers lists the algorithms NewReplacer understands
var validReplacers = map[string]bool{
	"lru": true,
	"2q":  true,
}
