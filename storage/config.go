package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"
)

// Backends understood by OpenBackingStore
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendMmap    = "mmap"
	BackendLevelDB = "leveldb"
	BackendBadger  = "badger"
)

// Config holds page cache configuration
type Config struct {
	// Buffer Pool Configuration
	PoolSize      uint32 `json:"pool_size" yaml:"pool_size"`           // Number of frames in the buffer pool
	CacheReplacer string `json:"cache_replacer" yaml:"cache_replacer"` // Replacement policy (lru, 2q)
	StrictUnpin   bool   `json:"strict_unpin" yaml:"strict_unpin"`     // Report unpin misuse as errors

	// Backing Store Configuration
	Backend       string `json:"backend" yaml:"backend"`                 // memory, file, mmap, leveldb, badger
	DataPath      string `json:"data_path" yaml:"data_path"`             // File (file, mmap) or directory (leveldb, badger)
	PageSize      uint32 `json:"page_size" yaml:"page_size"`             // Slot size in bytes for file and mmap
	SyncWrites    bool   `json:"sync_writes" yaml:"sync_writes"`         // fsync every write (leveldb, badger)
	ReadCacheSize string `json:"read_cache_size" yaml:"read_cache_size"` // Read cache in front of the store, e.g. "64MiB"; "0" disables

	// Performance Configuration
	EnableMetrics bool   `json:"enable_metrics" yaml:"enable_metrics"` // Log metrics on shutdown
	LogLevel      string `json:"log_level" yaml:"log_level"`           // Log level (debug, info, warn, error)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:      100,
		CacheReplacer: "lru",
		StrictUnpin:   false,
		Backend:       BackendMemory,
		DataPath:      "./data",
		PageSize:      PageSize,
		SyncWrites:    false,
		ReadCacheSize: "0",
		EnableMetrics: true,
		LogLevel:      "info",
	}
}

// LoadConfigFromFile loads configuration from a JSON or YAML file.
// Files ending in .yaml or .yml are parsed as YAML.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromEnv loads configuration from environment variables
// Falls back to default values if environment variables are not set
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	// Buffer Pool
	if val := os.Getenv("PAGECACHE_POOL_SIZE"); val != "" {
		if size, err := strconv.ParseUint(val, 10, 32); err == nil {
			config.PoolSize = uint32(size)
		}
	}

	if val := os.Getenv("PAGECACHE_REPLACER"); val != "" {
		config.CacheReplacer = val
	}

	if val := os.Getenv("PAGECACHE_STRICT_UNPIN"); val != "" {
		config.StrictUnpin = val == "true" || val == "1"
	}

	// Backing store
	if val := os.Getenv("PAGECACHE_BACKEND"); val != "" {
		config.Backend = val
	}

	if val := os.Getenv("PAGECACHE_DATA_PATH"); val != "" {
		config.DataPath = val
	}

	if val := os.Getenv("PAGECACHE_PAGE_SIZE"); val != "" {
		if size, err := strconv.ParseUint(val, 10, 32); err == nil {
			config.PageSize = uint32(size)
		}
	}

	if val := os.Getenv("PAGECACHE_SYNC_WRITES"); val != "" {
		config.SyncWrites = val == "true" || val == "1"
	}

	if val := os.Getenv("PAGECACHE_READ_CACHE_SIZE"); val != "" {
		config.ReadCacheSize = val
	}

	// Performance
	if val := os.Getenv("PAGECACHE_ENABLE_METRICS"); val != "" {
		config.EnableMetrics = val == "true" || val == "1"
	}

	if val := os.Getenv("PAGECACHE_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	return config
}

// SaveToFile saves the configuration as JSON, or YAML for .yaml/.yml paths
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ReadCacheBytes returns the parsed read cache size; 0 means disabled
func (c *Config) ReadCacheBytes() (int64, error) {
	if c.ReadCacheSize == "" || c.ReadCacheSize == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.ReadCacheSize)
	if err != nil {
		return 0, fmt.Errorf("invalid read cache size %q: %w", c.ReadCacheSize, err)
	}
	return int64(size), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PoolSize == 0 {
		return ErrInvalidConfig("pool size must be greater than 0")
	}

	if !validReplacers[c.CacheReplacer] {
		return ErrInvalidConfig(fmt.Sprintf("invalid cache replacer: %s (must be lru or 2q)", c.CacheReplacer))
	}

	switch c.Backend {
	case BackendMemory:
	case BackendFile, BackendMmap:
		if c.PageSize <= slotHeaderSize {
			return ErrInvalidConfig(fmt.Sprintf("page size must be greater than %d", slotHeaderSize))
		}
		if c.PageSize%512 != 0 {
			return ErrInvalidConfig("page size must be a multiple of 512")
		}
		if c.DataPath == "" {
			return ErrInvalidConfig("data path cannot be empty")
		}
	case BackendLevelDB, BackendBadger:
		if c.DataPath == "" {
			return ErrInvalidConfig("data path cannot be empty")
		}
	default:
		return ErrInvalidConfig(fmt.Sprintf("invalid backend: %s", c.Backend))
	}

	if _, err := c.ReadCacheBytes(); err != nil {
		return ErrInvalidConfig(err.Error())
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return ErrInvalidConfig(fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
