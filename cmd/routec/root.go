package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nervalabs/routecore/internal/config"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/handler/canvasimage"
	"github.com/nervalabs/routecore/internal/handler/textdoc"
	"github.com/nervalabs/routecore/internal/handler/vipsimage"
	"github.com/nervalabs/routecore/internal/hooks"
)

var rootCmd = &cobra.Command{
	Use:   "routec",
	Short: "Route and execute file-format conversions",
	Long:  "routec finds the cheapest chain of handler conversions between two file formats and can execute it.",
}

func init() {
	rootCmd.PersistentFlags().String("config", "routec.yaml", "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	return config.Load(v)
}

func newLogger(cmd *cobra.Command, cfg config.Config) hooks.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if l, ok := parseLevel(cfg.LogLevel); ok {
		level = l
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	return hooks.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// buildHandlers returns the shipped handler set: a libvips-backed handler
// for the still-image formats it covers natively, a pure-Go fallback for the
// rest, and the text/markdown/HTML converter.
func buildHandlers(cfg config.Config) []handler.Handler {
	return []handler.Handler{
		vipsimage.New(vipsimage.Config{}),
		canvasimage.New(),
		textdoc.New(),
	}
}
