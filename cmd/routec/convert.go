package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nervalabs/routecore/internal/cachefile"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/mimenorm"
	"github.com/nervalabs/routecore/internal/registry"
	"github.com/nervalabs/routecore/internal/routecore"
	"github.com/nervalabs/routecore/internal/sniff"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-file> <output-extension-or-mime> <output-file>",
	Short: "Convert a file to a target format",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, target, outputPath := args[0], args[1], args[2]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := newLogger(cmd, cfg)

		var store cachefile.Store
		if cfg.CachePath != "" {
			store = cachefile.NewLocalStore(cfg.CachePath)
		}

		ctx := context.Background()
		core, err := routecore.New(ctx, cfg, buildHandlers(cfg), store, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing core: %w", err)
		}

		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		srcOption, err := resolveSource(core.Registry, inputPath, data)
		if err != nil {
			return err
		}
		dstOption, err := resolveTarget(core.Registry, target)
		if err != nil {
			return err
		}

		files := []handler.File{{Name: filepath.Base(inputPath), Bytes: data}}
		result, ok := core.Executor.TryConvert(ctx, files, srcOption, dstOption)
		if !ok {
			return fmt.Errorf("no conversion route succeeded from %s to %s", srcOption.Format.MIME, dstOption.Format.MIME)
		}
		if len(result.Files) == 0 {
			return fmt.Errorf("conversion produced no output files")
		}

		if err := os.WriteFile(outputPath, result.Files[0].Bytes, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		if err := core.PersistCache(); err != nil {
			logger.Warn("convert.persist_cache_failed", "error", err.Error())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s via %d hop(s)\n", outputPath, len(result.Path)-1)
		return nil
	},
}

func resolveSource(reg *registry.Registry, path string, data []byte) (registry.Option, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if opt, ok := reg.ByExtension(ext); ok {
		return opt, nil
	}
	mime := sniff.Detect(data)
	if opt, ok := reg.ByMime(mime); ok {
		return opt, nil
	}
	return registry.Option{}, fmt.Errorf("no handler declares an input format for %q (sniffed %s)", path, mime)
}

func resolveTarget(reg *registry.Registry, target string) (registry.Option, error) {
	if strings.Contains(target, "/") {
		if opt, ok := reg.ByMime(mimenorm.Normalize(target)); ok {
			return opt, nil
		}
		return registry.Option{}, fmt.Errorf("no handler declares output format %q", target)
	}
	opts := reg.ByFormatTag(strings.ToLower(target))
	for _, opt := range opts {
		if opt.Format.To {
			return opt, nil
		}
	}
	return registry.Option{}, fmt.Errorf("no handler declares output format %q", target)
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
