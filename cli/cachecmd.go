package cli

// This file contains the cache subcommands for inspecting and clearing the
// artifact cache.

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/specgo/specgo/cache"
)

func (a *App) cacheStats(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	store := cache.New(a.logger, cfg.CacheDir)
	stats, err := store.GetStatistics()
	if err != nil {
		return fmt.Errorf("failed to read cache statistics: %w", err)
	}

	fmt.Printf("Cache directory: %s\n", store.Dir())
	fmt.Printf("Entries:         %d\n", stats.Entries)
	fmt.Printf("Total size:      %.1f KB\n", float64(stats.TotalBytes)/1024)
	return nil
}

func (a *App) cacheClear(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	store := cache.New(a.logger, cfg.CacheDir)
	stats, err := store.GetStatistics()
	if err != nil {
		return fmt.Errorf("failed to read cache statistics: %w", err)
	}

	if err := store.Clear(); err != nil {
		return err
	}

	a.logger.Info().
		Int("entries", stats.Entries).
		Uint64("bytes", stats.TotalBytes).
		Msg("Cache cleared")
	return nil
}
