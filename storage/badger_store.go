package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// badgerLogger routes Badger's internal logging into slog
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

// BadgerStore is a Badger backed BackingStore. Keys follow the LevelDBStore layout.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens or creates a Badger database in path.
// Badger's own log lines go to logger, or slog.Default() when nil.
func NewBadgerStore(path string, syncWrites bool, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(syncWrites).
		WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}

	return &BadgerStore{db: db}, nil
}

// ReadPage returns the stored payload, or an empty payload if the page was never written
func (s *BadgerStore) ReadPage(pageID PageID) ([]byte, error) {
	data := []byte{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pageKey(pageID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	return data, nil
}

// WritePage overwrites the payload of pageID
func (s *BadgerStore) WritePage(pageID PageID, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pageKey(pageID), append([]byte{}, data...))
	})
	if err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}
	return nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
