package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// pageKeyPrefix is the table space of page payloads in key-value stores
const pageKeyPrefix byte = 'P'

// pageKey converts a page ID into its key-value store key.
// Big endian keeps pages ordered by ID when iterating.
func pageKey(pageID PageID) []byte {
	var key [5]byte
	key[0] = pageKeyPrefix
	binary.BigEndian.PutUint32(key[1:], uint32(pageID))
	return key[:]
}

// LevelDBStore is a LevelDB backed BackingStore
type LevelDBStore struct {
	db   *leveldb.DB
	sync bool // fsync every write
}

// NewLevelDBStore opens or creates a LevelDB database in path
func NewLevelDBStore(path string, syncWrites bool) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	return &LevelDBStore{
		db:   db,
		sync: syncWrites,
	}, nil
}

// ReadPage returns the stored payload, or an empty payload if the page was never written
func (s *LevelDBStore) ReadPage(pageID PageID) ([]byte, error) {
	data, err := s.db.Get(pageKey(pageID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	return data, nil
}

// WritePage overwrites the payload of pageID
func (s *LevelDBStore) WritePage(pageID PageID, data []byte) error {
	if err := s.db.Put(pageKey(pageID), data, &opt.WriteOptions{Sync: s.sync}); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}
	return nil
}

// Close closes the database
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
