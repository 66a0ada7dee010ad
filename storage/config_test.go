package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.PoolSize != 100 {
		t.Errorf("Expected pool size 100, got %d", config.PoolSize)
	}

	if config.PageSize != PageSize {
		t.Errorf("Expected page size %d, got %d", PageSize, config.PageSize)
	}

	if config.CacheReplacer != "lru" {
		t.Errorf("Expected replacer 'lru', got '%s'", config.CacheReplacer)
	}

	if config.Backend != BackendMemory {
		t.Errorf("Expected backend '%s', got '%s'", BackendMemory, config.Backend)
	}

	if config.StrictUnpin {
		t.Error("Expected permissive unpin by default")
	}

	if !config.EnableMetrics {
		t.Error("Expected metrics to be enabled by default")
	}

	if config.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got '%s'", config.LogLevel)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		expectError bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"zero pool size", func(c *Config) { c.PoolSize = 0 }, true},
		{"2q replacer", func(c *Config) { c.CacheReplacer = "2q" }, false},
		{"unknown replacer", func(c *Config) { c.CacheReplacer = "clock" }, true},
		{"file backend", func(c *Config) { c.Backend = BackendFile }, false},
		{"file backend without path", func(c *Config) { c.Backend = BackendFile; c.DataPath = "" }, true},
		{"mmap page size too small", func(c *Config) { c.Backend = BackendMmap; c.PageSize = 4 }, true},
		{"mmap page size not aligned", func(c *Config) { c.Backend = BackendMmap; c.PageSize = 1000 }, true},
		{"memory backend ignores page size", func(c *Config) { c.PageSize = 0 }, false},
		{"leveldb backend", func(c *Config) { c.Backend = BackendLevelDB }, false},
		{"badger without path", func(c *Config) { c.Backend = BackendBadger; c.DataPath = "" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "tape" }, true},
		{"read cache size", func(c *Config) { c.ReadCacheSize = "64MiB" }, false},
		{"bad read cache size", func(c *Config) { c.ReadCacheSize = "lots" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if err != nil && !IsErrorCode(err, ErrCodeInvalidConfig) {
				t.Errorf("Expected ErrCodeInvalidConfig, got %v", err)
			}
		})
	}
}

func TestReadCacheBytes(t *testing.T) {
	config := DefaultConfig()

	size, err := config.ReadCacheBytes()
	if err != nil || size != 0 {
		t.Errorf("Expected disabled read cache, got %d, %v", size, err)
	}

	config.ReadCacheSize = "1 MiB"
	size, err = config.ReadCacheBytes()
	if err != nil {
		t.Fatalf("Failed to parse read cache size: %v", err)
	}
	if size != 1<<20 {
		t.Errorf("Expected %d bytes, got %d", 1<<20, size)
	}

	config.ReadCacheSize = "2kB"
	size, _ = config.ReadCacheBytes()
	if size != 2000 {
		t.Errorf("Expected 2000 bytes, got %d", size)
	}
}

func TestConfigSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config := DefaultConfig()
	config.PoolSize = 3
	config.CacheReplacer = "2q"
	config.Backend = BackendFile
	config.DataPath = "pages.db"
	config.StrictUnpin = true

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loaded != *config {
		t.Errorf("Loaded config differs:\nexpected %+v\ngot      %+v", config, loaded)
	}
}

func TestConfigLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagecache.yaml")

	content := `pool_size: 8
cache_replacer: 2q
backend: leveldb
data_path: /tmp/pages
read_cache_size: 16MiB
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	if config.PoolSize != 8 || config.CacheReplacer != "2q" || config.Backend != BackendLevelDB {
		t.Errorf("Unexpected config: %+v", config)
	}
	if config.DataPath != "/tmp/pages" || config.LogLevel != "debug" {
		t.Errorf("Unexpected config: %+v", config)
	}

	// Unset keys keep their defaults
	if config.PageSize != PageSize || !config.EnableMetrics {
		t.Errorf("Expected defaults for unset keys, got %+v", config)
	}
}

func TestConfigSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagecache.yml")

	config := DefaultConfig()
	config.ReadCacheSize = "8MiB"
	config.SyncWrites = true

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if *loaded != *config {
		t.Errorf("Loaded config differs:\nexpected %+v\ngot      %+v", config, loaded)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"pool_size": 0}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigFromFile(path); err == nil {
		t.Error("Expected error for zero pool size")
	}

	if _, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PAGECACHE_POOL_SIZE", "16")
	t.Setenv("PAGECACHE_REPLACER", "2q")
	t.Setenv("PAGECACHE_STRICT_UNPIN", "true")
	t.Setenv("PAGECACHE_BACKEND", BackendBadger)
	t.Setenv("PAGECACHE_DATA_PATH", "/var/lib/pagecache")
	t.Setenv("PAGECACHE_SYNC_WRITES", "1")
	t.Setenv("PAGECACHE_READ_CACHE_SIZE", "4MiB")
	t.Setenv("PAGECACHE_ENABLE_METRICS", "false")
	t.Setenv("PAGECACHE_LOG_LEVEL", "warn")

	config := LoadConfigFromEnv()

	if config.PoolSize != 16 {
		t.Errorf("Expected pool size 16, got %d", config.PoolSize)
	}
	if config.CacheReplacer != "2q" {
		t.Errorf("Expected replacer '2q', got '%s'", config.CacheReplacer)
	}
	if !config.StrictUnpin || !config.SyncWrites {
		t.Error("Expected strict unpin and sync writes")
	}
	if config.Backend != BackendBadger || config.DataPath != "/var/lib/pagecache" {
		t.Errorf("Unexpected backend settings: %s %s", config.Backend, config.DataPath)
	}
	if config.ReadCacheSize != "4MiB" {
		t.Errorf("Expected read cache '4MiB', got '%s'", config.ReadCacheSize)
	}
	if config.EnableMetrics {
		t.Error("Expected metrics disabled")
	}
	if config.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", config.LogLevel)
	}
}

func TestLoadConfigFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("PAGECACHE_POOL_SIZE", "many")

	config := LoadConfigFromEnv()
	if config.PoolSize != 100 {
		t.Errorf("Expected default pool size, got %d", config.PoolSize)
	}
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.PoolSize = 1
	clone.Backend = BackendMmap

	if original.PoolSize != 100 || original.Backend != BackendMemory {
		t.Error("Modifying the clone changed the original")
	}
}
