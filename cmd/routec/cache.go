package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nervalabs/routecore/internal/cachefile"
	"github.com/nervalabs/routecore/internal/routecore"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or rebuild the persisted format cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current format cache as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store := cachefile.NewLocalStore(cfg.CachePath)
		cache, err := store.Load()
		if err != nil {
			return fmt.Errorf("loading cache: %w", err)
		}
		data, err := json.MarshalIndent(cache, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var cacheRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-run every handler's Init and overwrite the persisted cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := newLogger(cmd, cfg)

		ctx := context.Background()
		// Pass a nil store to New so it builds from scratch, ignoring any
		// existing cache, then persist fresh results through a real store.
		core, err := routecore.New(ctx, cfg, buildHandlers(cfg), nil, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing core: %w", err)
		}

		store := cachefile.NewLocalStore(cfg.CachePath)
		if err := store.Save(core.Registry.Serialize()); err != nil {
			return fmt.Errorf("saving cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rebuilt cache for %d handler(s) at %s\n", len(core.Registry.HandlerNames()), cfg.CachePath)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheRebuildCmd)
	rootCmd.AddCommand(cacheCmd)
}
