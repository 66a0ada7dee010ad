package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// PageSize is the default slot size of file-backed stores
const PageSize = 4096

// Slot layout used by FileStore and MmapStore:
// [0-3]: payload length (little endian)
// [4+]: payload, zero padded to the slot size
const slotHeaderSize = 4

// encodeSlot writes data into a slot-sized buffer
func encodeSlot(buf []byte, pageID PageID, data []byte, op string) error {
	if len(data) > len(buf)-slotHeaderSize {
		return ErrPayloadTooLarge(op, pageID, len(data), len(buf)-slotHeaderSize)
	}

	binary.LittleEndian.PutUint32(buf[0:slotHeaderSize], uint32(len(data)))
	n := copy(buf[slotHeaderSize:], data)
	clear(buf[slotHeaderSize+n:])
	return nil
}

// decodeSlot returns a copy of the payload stored in a slot
func decodeSlot(slot []byte, pageID PageID) ([]byte, error) {
	length := binary.LittleEndian.Uint32(slot[0:slotHeaderSize])
	if int(length) > len(slot)-slotHeaderSize {
		return nil, fmt.Errorf("page %d slot corrupted: length %d exceeds slot", pageID, length)
	}

	data := make([]byte, length)
	copy(data, slot[slotHeaderSize:slotHeaderSize+int(length)])
	return data, nil
}

// FileStore keeps each page in a fixed-size slot of a single file,
// at offset pageID * slotSize. Writes overwrite the slot in place.
type FileStore struct {
	file     *os.File
	slotSize int
	mutex    sync.Mutex
}

// NewFileStore opens or creates fileName with the given slot size
func NewFileStore(fileName string, slotSize int) (*FileStore, error) {
	if slotSize <= slotHeaderSize {
		return nil, fmt.Errorf("slot size must be greater than %d bytes, got %d", slotHeaderSize, slotSize)
	}

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open/create file %s: %w", fileName, err)
	}

	return &FileStore{
		file:     file,
		slotSize: slotSize,
	}, nil
}

// ReadPage reads a page slot; a slot past the end of the file reads as empty
func (fs *FileStore) ReadPage(pageID PageID) ([]byte, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	offset := int64(pageID) * int64(fs.slotSize)
	slot := make([]byte, fs.slotSize)

	n, err := fs.file.ReadAt(slot, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	if n < slotHeaderSize {
		return []byte{}, nil
	}

	return decodeSlot(slot, pageID)
}

// WritePage overwrites the slot of pageID and syncs the file
func (fs *FileStore) WritePage(pageID PageID, data []byte) error {
	slot := make([]byte, fs.slotSize)
	if err := encodeSlot(slot, pageID, data, "FileStore.WritePage"); err != nil {
		return err
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	offset := int64(pageID) * int64(fs.slotSize)
	if _, err := fs.file.WriteAt(slot, offset); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}

	return fs.file.Sync()
}

// SlotSize returns the slot size in bytes
func (fs *FileStore) SlotSize() int {
	return fs.slotSize
}

// Close closes the underlying file
func (fs *FileStore) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if fs.file != nil {
		err := fs.file.Close()
		fs.file = nil
		return err
	}
	return nil
}
