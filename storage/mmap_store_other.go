//go:build !(linux || darwin)

package storage

import (
	"fmt"
	"runtime"
)

// MmapGrowSlots is the number of slots the mapping grows by when a write
// lands past its end
const MmapGrowSlots = 256

// MmapStore is not available on this platform
type MmapStore struct {
	FileStore
}

// NewMmapStore reports that memory-mapped stores are unsupported here
func NewMmapStore(fileName string, slotSize int) (*MmapStore, error) {
	return nil, fmt.Errorf("mmap store is not supported on %s", runtime.GOOS)
}
