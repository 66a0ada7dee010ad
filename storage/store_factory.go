package storage

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// OpenBackingStore opens the store selected by config.Backend, wrapped in a
// read cache when config.ReadCacheSize is set. The memory backend serves
// SyntheticPage content for pages never written. Stores that log on their
// own use logger, or slog.Default() when nil.
func OpenBackingStore(config *Config, logger *slog.Logger) (BackingStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var store BackingStore
	var err error
	switch config.Backend {
	case BackendMemory:
		store = NewMemoryStore(SyntheticPage)
	case BackendFile:
		store, err = NewFileStore(config.DataPath, int(config.PageSize))
	case BackendMmap:
		store, err = NewMmapStore(config.DataPath, int(config.PageSize))
	case BackendLevelDB:
		store, err = NewLevelDBStore(config.DataPath, config.SyncWrites)
	case BackendBadger:
		store, err = NewBadgerStore(config.DataPath, config.SyncWrites, logger)
	}
	if err != nil {
		return nil, err
	}

	cacheBytes, _ := config.ReadCacheBytes()
	if cacheBytes == 0 {
		return store, nil
	}

	cached, err := NewCachedStore(store, cacheBytes)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}
	return cached, nil
}

// NewLogger creates a text logger writing to w at the given level
// (debug, info, warn or error; anything else means info)
func NewLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
