package cmd

import (
	"errors"
	"strconv"
	"time"

	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var receptionCmd = &cobra.Command{
	Use:     "reception",
	Short:   "Record goods received from a producer",
	GroupID: "records",
}

var (
	recProducerID int64
	recProductID  int64
	recQuantity   float64
	recSellerID   int64
	recNotes      string
)

var receptionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new reception",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		user, err := app.requireUser()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		rec := &models.Reception{
			PointeurID: user.ID,
			ProducerID: recProducerID,
			ProductID:  recProductID,
			Quantity:   recQuantity,
			Notes:      recNotes,
			ReceivedAt: time.Now().UTC(),
		}
		if recSellerID != 0 {
			rec.AssignedSellerID = &recSellerID
		}
		if err := app.store.CreateReception(rec); err != nil {
			output.Error("create reception: %v", err)
			return err
		}
		output.Success("reception #%d recorded %s", rec.ID, output.FormatSyncStatus(rec.SyncStatus))
		return nil
	},
}

var receptionEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a reception that is not locked yet",
	Args:  cobra.ExactArgs(1),
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

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			output.Error("invalid id %q", args[0])
			return err
		}
		rec, err := app.store.GetReception(id)
		if err != nil {
			output.Error("load reception: %v", err)
			return err
		}
		if rec == nil {
			output.Error("reception %d not found", id)
			return errSilent
		}
		if cmd.Flags().Changed("quantite") {
			rec.Quantity = recQuantity
		}
		if cmd.Flags().Changed("notes") {
			rec.Notes = recNotes
		}
		if err := app.store.UpdateReception(rec); err != nil {
			if errors.Is(err, db.ErrLocked) {
				output.Error("reception %d is locked by a supervisor", id)
				return errSilent
			}
			output.Error("update reception: %v", err)
			return err
		}
		output.Success("reception #%d updated %s", rec.ID, output.FormatSyncStatus(rec.SyncStatus))
		return nil
	},
}

func init() {
	receptionAddCmd.Flags().Int64Var(&recProducerID, "producteur", 0, "producer user id")
	receptionAddCmd.Flags().Int64Var(&recProductID, "produit", 0, "product id")
	receptionAddCmd.Flags().Float64Var(&recQuantity, "quantite", 0, "quantity received")
	receptionAddCmd.Flags().Int64Var(&recSellerID, "vendeur", 0, "assigned seller id")
	receptionAddCmd.Flags().StringVar(&recNotes, "notes", "", "free-form notes")
	receptionAddCmd.MarkFlagRequired("producteur")
	receptionAddCmd.MarkFlagRequired("produit")
	receptionAddCmd.MarkFlagRequired("quantite")

	receptionEditCmd.Flags().Float64Var(&recQuantity, "quantite", 0, "new quantity")
	receptionEditCmd.Flags().StringVar(&recNotes, "notes", "", "new notes")

	receptionCmd.AddCommand(receptionAddCmd, receptionEditCmd)
	rootCmd.AddCommand(receptionCmd)
}
