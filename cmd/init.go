package cmd

import (
	"os"
	"path/filepath"

	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var initServerURL string

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize the local database for this device",
	Long:    `Creates the local .easygest directory and SQLite database.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := getBaseDir()

		if _, err := os.Stat(filepath.Join(dir, ".easygest")); err == nil {
			output.Warning(".easygest/ already exists")
			return nil
		}

		store, err := db.Initialize(dir)
		if err != nil {
			output.Error("initialize database: %v", err)
			return err
		}
		defer store.Close()

		if initServerURL != "" {
			if err := store.SetConfig(db.ConfigBaseURL, initServerURL); err != nil {
				output.Error("save server url: %v", err)
				return err
			}
		}
		clientID, err := store.ClientID()
		if err != nil {
			output.Error("assign device id: %v", err)
			return err
		}

		output.Success("Initialized .easygest/")
		output.Info("Device: %s", clientID)
		if initServerURL == "" {
			output.Warning("no server configured; pass --server or set BP_SERVER_URL before syncing")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initServerURL, "server", "", "sync server base URL")
	rootCmd.AddCommand(initCmd)
}
