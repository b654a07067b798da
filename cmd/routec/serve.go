package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nervalabs/routecore/internal/cachefile"
	"github.com/nervalabs/routecore/internal/routecore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live path-search event stream over WebSocket",
	Long:  "Starts an HTTP server exposing /ws, broadcasting every searching/found/skipped event from route searches run against this process's graph.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := newLogger(cmd, cfg)

		var store cachefile.Store
		if cfg.CachePath != "" {
			store = cachefile.NewLocalStore(cfg.CachePath)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		core, err := routecore.New(ctx, cfg, buildHandlers(cfg), store, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing core: %w", err)
		}
		go core.Events.Run()
		defer core.Events.Stop()

		if cfg.CostTableFile != "" {
			watcher := core.WatchCostTableFile(ctx, cfg.CostTableFile, 200*time.Millisecond)
			go func() {
				if err := watcher.Start(); err != nil {
					logger.Warn("serve.watchcfg_stopped", "error", err.Error())
				}
			}()
			defer core.StopWatch()
		}

		addr := cfg.EventsAddr
		if addr == "" {
			addr = ":8090"
		}
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", core.Events.ServeWS)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "clients=%d\n", core.Events.ClientCount())
		})
		srv := &http.Server{Addr: addr, Handler: mux}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Fprintln(cmd.OutOrStdout(), "\nshutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "routec events listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
