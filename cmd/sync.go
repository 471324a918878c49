package cmd

import (
	"context"

	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Run one synchronization round now",
	Long:    `Pushes locally pending records, pulls server changes, and advances the checkpoint.`,
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

		res := app.engine.FullSync(context.Background())
		output.PrintResult(res)
		if !res.Success {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return errSilent
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show connectivity, pending count and last sync",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		st, err := app.engine.Status(context.Background())
		if err != nil {
			output.Error("status: %v", err)
			return err
		}
		output.PrintStatus(st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, statusCmd)
}
