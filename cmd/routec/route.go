package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/routecore"
)

var routeCmd = &cobra.Command{
	Use:   "route <from-mime-or-extension> <to-mime-or-extension>",
	Short: "Print the cheapest conversion path between two formats without converting anything",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := newLogger(cmd, cfg)

		ctx := context.Background()
		core, err := routecore.New(ctx, cfg, buildHandlers(cfg), nil, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing core: %w", err)
		}

		srcOption, err := resolveTarget(core.Registry, from)
		if err != nil {
			return fmt.Errorf("resolving source: %w", err)
		}
		dstOption, err := resolveTarget(core.Registry, to)
		if err != nil {
			return fmt.Errorf("resolving target: %w", err)
		}

		search := core.Graph.Search(
			graph.PathNode{Handler: srcOption.Handler, Format: srcOption.Format},
			graph.PathNode{Handler: dstOption.Handler, Format: dstOption.Format},
			cfg.SimpleMode,
		)
		path, ok := search.Next()
		if !ok {
			return fmt.Errorf("no route found from %s to %s", srcOption.Format.MIME, dstOption.Format.MIME)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderPath(path))
		return nil
	},
}

func renderPath(path graph.Path) string {
	steps := make([]string, len(path))
	for i, n := range path {
		handlerName := "-"
		if n.Handler != nil {
			handlerName = n.Handler.Name()
		}
		steps[i] = fmt.Sprintf("%s[%s]", n.Format.Format, handlerName)
	}
	return strings.Join(steps, " -> ")
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
