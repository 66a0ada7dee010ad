package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/sibexico/pagecache/storage"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pagecache: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pagecache"
	app.Usage = "Drive a fixed-capacity page cache over a pluggable backing store"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "JSON or YAML config file (default: PAGECACHE_* environment)",
		},
		cli.StringFlag{
			Name:  "backend, b",
			Usage: "Backing store: memory, file, mmap, leveldb or badger",
		},
		cli.StringFlag{
			Name:  "data, d",
			Usage: "Data file or directory of the backing store",
		},
		cli.StringFlag{
			Name:  "replacer, r",
			Usage: "Replacement policy: lru or 2q",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "demo",
			Usage: "Run the four page eviction scenario and print metrics",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "pool-size, n",
					Value: 3,
					Usage: "Number of frames",
				},
			},
			Action: handleDemo,
		},
		{
			Name:      "dump",
			Usage:     "Print the stored content of a page range",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "from",
					Value: 1,
					Usage: "First page ID",
				},
				cli.UintFlag{
					Name:  "to",
					Value: 4,
					Usage: "Last page ID",
				},
			},
			Action: handleDump,
		},
	}

	return app
}

// loadConfig reads the config file or environment and applies global flag overrides
func loadConfig(ctx *cli.Context) (*storage.Config, error) {
	var config *storage.Config
	if path := ctx.GlobalString("config"); path != "" {
		loaded, err := storage.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		config = storage.LoadConfigFromEnv()
	}

	if ctx.GlobalIsSet("backend") {
		config.Backend = ctx.GlobalString("backend")
	}
	if ctx.GlobalIsSet("data") {
		config.DataPath = ctx.GlobalString("data")
	}
	if ctx.GlobalIsSet("replacer") {
		config.CacheReplacer = ctx.GlobalString("replacer")
	}
	if ctx.GlobalIsSet("log-level") {
		config.LogLevel = ctx.GlobalString("log-level")
	}

	return config, config.Validate()
}

func closeStore(store storage.BackingStore, logger *slog.Logger) {
	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close backing store", "error", err)
		}
	}
}

func handleDemo(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	poolSize := ctx.Uint("pool-size")
	if poolSize > math.MaxUint32 {
		return fmt.Errorf("--pool-size %d exceeds %d", poolSize, uint64(math.MaxUint32))
	}
	config.PoolSize = uint32(poolSize)

	logger := storage.NewLogger(config.LogLevel, os.Stderr)

	store, err := storage.OpenBackingStore(config, logger)
	if err != nil {
		return err
	}

	bpm, err := storage.NewBufferPoolManagerFromConfig(config, store, logger)
	if err != nil {
		closeStore(store, logger)
		return err
	}

	steps := []struct {
		pageID storage.PageID
		dirty  bool
	}{
		{1, true},
		{2, false},
		{3, false},
		{4, true}, // evicts page 1
	}

	for _, step := range steps {
		frame, err := bpm.FetchPage(step.pageID)
		if err != nil {
			bpm.Close()
			return fmt.Errorf("fetch page %d: %w", step.pageID, err)
		}
		fmt.Printf("page %d -> frame %d: %q\n", frame.PageID(), frame.FrameID(), frame.Data())

		if err := bpm.UnpinPage(step.pageID, step.dirty); err != nil {
			bpm.Close()
			return err
		}
	}

	if err := bpm.FlushAllPages(); err != nil {
		logger.Error("flush failed", "error", err)
	}

	stats := bpm.Stats()
	fmt.Println("\n--- Performance Metrics ---")
	fmt.Printf("Hits: %d\n", stats.Hits)
	fmt.Printf("Misses: %d\n", stats.Misses)
	fmt.Printf("Hit Rate: %.2f\n", stats.HitRate)
	fmt.Printf("Evictions: %d\n", stats.Evictions)
	fmt.Printf("Write-backs: %d\n", stats.DirtyPageFlushes)

	if config.EnableMetrics {
		bpm.GetMetrics().LogMetrics(logger)
	}

	return bpm.Close()
}

func handleDump(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	from, to := uint64(ctx.Uint("from")), uint64(ctx.Uint("to"))
	if to >= uint64(storage.InvalidPageID) {
		return fmt.Errorf("--to %d is not a valid page ID (max %d)", to, uint64(storage.InvalidPageID)-1)
	}
	if from > to {
		return fmt.Errorf("--from (%d) is greater than --to (%d)", from, to)
	}

	logger := storage.NewLogger(config.LogLevel, os.Stderr)
	store, err := storage.OpenBackingStore(config, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	var total uint64
	for id := from; id <= to; id++ {
		data, err := store.ReadPage(storage.PageID(id))
		if err != nil {
			return err
		}
		total += uint64(len(data))

		preview := data
		if len(preview) > 64 {
			preview = preview[:64]
		}
		fmt.Printf("page %-6d %10s  %q\n", id, humanize.Bytes(uint64(len(data))), preview)
	}
	fmt.Printf("%d pages, %s total\n", to-from+1, humanize.Bytes(total))

	return nil
}
