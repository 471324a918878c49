package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var retourCmd = &cobra.Command{
	Use:     "retour",
	Short:   "Record products coming back from a counter",
	GroupID: "records",
}

var (
	retSellerID    int64
	retProductID   int64
	retQuantity    float64
	retReason      string
	retDescription string
)

func parseReason(raw string) (models.ReturnReason, error) {
	switch models.ReturnReason(raw) {
	case models.ReasonExpired, models.ReasonDamaged, models.ReasonOther:
		return models.ReturnReason(raw), nil
	}
	return "", fmt.Errorf("unknown reason %q (perime, abime, autre)", raw)
}

var retourAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new product return",
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
		reason, err := parseReason(retReason)
		if err != nil {
			output.Error("%v", err)
			return errSilent
		}

		ret := &models.Return{
			PointeurID:  user.ID,
			SellerID:    retSellerID,
			ProductID:   retProductID,
			Quantity:    retQuantity,
			Reason:      reason,
			Description: retDescription,
			ReturnedAt:  time.Now().UTC(),
		}
		if err := app.store.CreateReturn(ret); err != nil {
			output.Error("create return: %v", err)
			return err
		}
		output.Success("return #%d recorded %s", ret.ID, output.FormatSyncStatus(ret.SyncStatus))
		return nil
	},
}

var retourEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a return that is not locked yet",
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
		ret, err := app.store.GetReturn(id)
		if err != nil {
			output.Error("load return: %v", err)
			return err
		}
		if ret == nil {
			output.Error("return %d not found", id)
			return errSilent
		}
		if cmd.Flags().Changed("quantite") {
			ret.Quantity = retQuantity
		}
		if cmd.Flags().Changed("raison") {
			reason, err := parseReason(retReason)
			if err != nil {
				output.Error("%v", err)
				return errSilent
			}
			ret.Reason = reason
		}
		if cmd.Flags().Changed("description") {
			ret.Description = retDescription
		}
		if err := app.store.UpdateReturn(ret); err != nil {
			if errors.Is(err, db.ErrLocked) {
				output.Error("return %d is locked by a supervisor", id)
				return errSilent
			}
			output.Error("update return: %v", err)
			return err
		}
		output.Success("return #%d updated %s", ret.ID, output.FormatSyncStatus(ret.SyncStatus))
		return nil
	},
}

func init() {
	retourAddCmd.Flags().Int64Var(&retSellerID, "vendeur", 0, "seller user id")
	retourAddCmd.Flags().Int64Var(&retProductID, "produit", 0, "product id")
	retourAddCmd.Flags().Float64Var(&retQuantity, "quantite", 0, "quantity returned")
	retourAddCmd.Flags().StringVar(&retReason, "raison", string(models.ReasonOther), "reason (perime, abime, autre)")
	retourAddCmd.Flags().StringVar(&retDescription, "description", "", "details, required for reason 'autre'")
	retourAddCmd.MarkFlagRequired("vendeur")
	retourAddCmd.MarkFlagRequired("produit")
	retourAddCmd.MarkFlagRequired("quantite")

	retourEditCmd.Flags().Float64Var(&retQuantity, "quantite", 0, "new quantity")
	retourEditCmd.Flags().StringVar(&retReason, "raison", "", "new reason")
	retourEditCmd.Flags().StringVar(&retDescription, "description", "", "new details")

	retourCmd.AddCommand(retourAddCmd, retourEditCmd)
	rootCmd.AddCommand(retourCmd)
}
