//go:build linux || darwin

package storage

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// MmapGrowSlots is the number of slots the mapping grows by when a write
// lands past its end
const MmapGrowSlots = 256

// MmapMaxFileSize bounds how far the mapped file may grow
const MmapMaxFileSize int64 = 1 << 36

// MmapStore keeps page slots in a memory-mapped file. It uses the same slot
// layout as FileStore, so either can open a file written by the other.
type MmapStore struct {
	file     *os.File
	mmapData []byte
	fileSize int64
	maxSize  int64
	slotSize int
	mutex    sync.RWMutex
}

// NewMmapStore opens or creates fileName and maps it into memory
func NewMmapStore(fileName string, slotSize int) (*MmapStore, error) {
	if slotSize <= slotHeaderSize {
		return nil, fmt.Errorf("slot size must be greater than %d bytes, got %d", slotHeaderSize, slotSize)
	}

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open/create file %s: %w", fileName, err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	ms := &MmapStore{
		file:     file,
		slotSize: slotSize,
		maxSize:  MmapMaxFileSize,
	}

	fileSize := ms.roundUp(fileInfo.Size())
	if minSize := int64(slotSize) * MmapGrowSlots; fileSize < minSize {
		fileSize = minSize
	}
	if err := ms.resize(fileSize); err != nil {
		file.Close()
		return nil, err
	}

	return ms, nil
}

// roundUp rounds size up to a whole number of slots
func (ms *MmapStore) roundUp(size int64) int64 {
	slot := int64(ms.slotSize)
	return (size + slot - 1) / slot * slot
}

// resize grows the file to newSize and replaces the mapping.
// The old mapping stays in place until the new one exists, so a failure
// leaves the store readable at its previous size.
// Caller holds the write lock (or has exclusive access during construction).
func (ms *MmapStore) resize(newSize int64) error {
	if newSize > ms.maxSize {
		return fmt.Errorf("mapping of %d bytes exceeds limit of %d bytes", newSize, ms.maxSize)
	}

	if err := ms.file.Truncate(newSize); err != nil {
		return fmt.Errorf("failed to grow file: %w", err)
	}

	data, err := unix.Mmap(int(ms.file.Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		if ms.mmapData != nil {
			ms.file.Truncate(ms.fileSize)
		}
		return fmt.Errorf("failed to map file: %w", err)
	}

	if ms.mmapData != nil {
		if err := unix.Munmap(ms.mmapData); err != nil {
			unix.Munmap(data)
			return fmt.Errorf("failed to unmap file: %w", err)
		}
	}

	ms.mmapData = data
	ms.fileSize = newSize
	return nil
}

// ReadPage copies a page out of the mapping; a slot past the end reads as empty
func (ms *MmapStore) ReadPage(pageID PageID) ([]byte, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	offset := int64(pageID) * int64(ms.slotSize)
	if ms.mmapData == nil || offset+int64(ms.slotSize) > ms.fileSize {
		return []byte{}, nil
	}

	return decodeSlot(ms.mmapData[offset:offset+int64(ms.slotSize)], pageID)
}

// WritePage copies data into the mapping, growing the file when needed
func (ms *MmapStore) WritePage(pageID PageID, data []byte) error {
	slot := make([]byte, ms.slotSize)
	if err := encodeSlot(slot, pageID, data, "MmapStore.WritePage"); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.mmapData == nil {
		return fmt.Errorf("mmap store is closed")
	}

	offset := int64(pageID) * int64(ms.slotSize)
	end := offset + int64(ms.slotSize)
	if end > ms.maxSize {
		return fmt.Errorf("page %d lies beyond the %d byte mapping limit", pageID, ms.maxSize)
	}
	if end > ms.fileSize {
		newSize := end + int64(ms.slotSize)*MmapGrowSlots
		if newSize > ms.maxSize {
			newSize = ms.maxSize
		}
		if err := ms.resize(newSize); err != nil {
			return fmt.Errorf("failed to write page %d: %w", pageID, err)
		}
	}

	copy(ms.mmapData[offset:end], slot)
	return nil
}

// Flush writes the mapping back to the file
func (ms *MmapStore) Flush() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.mmapData == nil {
		return nil
	}
	if err := unix.Msync(ms.mmapData, unix.MS_SYNC); err != nil {
		return fmt.Errorf("failed to sync mapping: %w", err)
	}
	return nil
}

// FileSize returns the current size of the mapped file
func (ms *MmapStore) FileSize() int64 {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.fileSize
}

// Close syncs and unmaps the file
func (ms *MmapStore) Close() error {
	if err := ms.Flush(); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.mmapData != nil {
		if err := unix.Munmap(ms.mmapData); err != nil {
			return fmt.Errorf("failed to unmap file: %w", err)
		}
		ms.mmapData = nil
	}
	if ms.file != nil {
		err := ms.file.Close()
		ms.file = nil
		return err
	}
	return nil
}
