package cmd

import (
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:     "debug",
	Short:   "Inspection helpers",
	GroupID: "system",
	Hidden:  true,
}

var debugExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every local collection as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		dump, err := app.store.ExportAll()
		if err != nil {
			output.Error("export: %v", err)
			return err
		}
		return output.JSON(dump)
	},
}

func init() {
	debugCmd.AddCommand(debugExportCmd)
	rootCmd.AddCommand(debugCmd)
}
