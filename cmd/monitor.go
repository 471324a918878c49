package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/easygest/bp/internal/autosync"
	"github.com/easygest/bp/internal/output"
	"github.com/easygest/bp/internal/sync"
	"github.com/spf13/cobra"
)

var (
	monitorProbeEvery time.Duration
	monitorSyncEvery  time.Duration
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Short:   "Watch connectivity and sync automatically",
	Long:    `Probes the server in a loop, fires a sync round when the connection comes back after an outage, and keeps syncing periodically while online. Runs until interrupted.`,
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		if _, err := app.requireUser(); err != nil {
			output.Error("%v", err)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		unsubscribe := app.engine.Subscribe(func(st sync.Status) {
			output.Info("%s | pending %d | last sync %s",
				output.FormatOnline(st.IsOnline), st.PendingCount, output.FormatLastSync(st.LastSync))
		})
		defer unsubscribe()

		watcher := autosync.New(app.engine, app.client, app.auth, autosync.Options{
			ProbeInterval: monitorProbeEvery,
			SyncInterval:  monitorSyncEvery,
		})
		output.Info("watching %s (ctrl-c to stop)", app.client.BaseURL)
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorProbeEvery, "probe-every", 10*time.Second, "reachability probe interval")
	monitorCmd.Flags().DurationVar(&monitorSyncEvery, "sync-every", 5*time.Minute, "periodic sync interval while online")
	rootCmd.AddCommand(monitorCmd)
}
