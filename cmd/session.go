package cmd

import (
	"time"

	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Open and close cash sessions",
	GroupID: "records",
}

var (
	sessFloat     float64
	sessOMInitial float64
	sessMMInitial float64

	sessDeposited float64
	sessOMFinal   float64
	sessMMFinal   float64
	sessSales     float64
)

var sessionOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a cash session for the current seller",
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
		category := models.CategoryBakery
		if user.Role == models.RoleSellerPastry {
			category = models.CategoryPastry
		}

		if open, err := app.store.ActiveSaleSession(user.ID); err != nil {
			output.Error("check open session: %v", err)
			return err
		} else if open != nil {
			output.Error("session #%d is still open, close it first", open.ID)
			return errSilent
		}

		sess := &models.SaleSession{
			SellerID:           user.ID,
			Category:           category,
			OpeningFloat:       sessFloat,
			OrangeMoneyInitial: sessOMInitial,
			MTNMoneyInitial:    sessMMInitial,
			OpenedAt:           time.Now().UTC(),
		}
		if err := app.store.OpenSaleSession(sess); err != nil {
			output.Error("open session: %v", err)
			return err
		}
		output.Success("session #%d opened %s", sess.ID, output.FormatSyncStatus(sess.SyncStatus))
		return nil
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the current seller's open session",
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
		sess, err := app.store.ActiveSaleSession(user.ID)
		if err != nil {
			output.Error("load open session: %v", err)
			return err
		}
		if sess == nil {
			output.Error("no open session for %s", user.Name)
			return errSilent
		}

		now := time.Now().UTC()
		expected := sessSales + sess.OpeningFloat
		shortfall := expected - sessDeposited
		sess.State = models.SessionClosed
		sess.AmountDeposited = &sessDeposited
		sess.OrangeMoneyFinal = &sessOMFinal
		sess.MTNMoneyFinal = &sessMMFinal
		sess.SalesValue = &sessSales
		sess.Shortfall = &shortfall
		sess.ClosedBy = &user.ID
		sess.ClosedAt = &now

		if err := app.store.UpdateSaleSession(sess); err != nil {
			output.Error("close session: %v", err)
			return err
		}
		if shortfall > 0 {
			output.Warning("session #%d closed with a shortfall of %.0f", sess.ID, shortfall)
		} else {
			output.Success("session #%d closed %s", sess.ID, output.FormatSyncStatus(sess.SyncStatus))
		}
		return nil
	},
}

func init() {
	sessionOpenCmd.Flags().Float64Var(&sessFloat, "fond", 0, "opening cash float")
	sessionOpenCmd.Flags().Float64Var(&sessOMInitial, "orange", 0, "opening Orange Money balance")
	sessionOpenCmd.Flags().Float64Var(&sessMMInitial, "mtn", 0, "opening MTN Money balance")

	sessionCloseCmd.Flags().Float64Var(&sessDeposited, "verse", 0, "cash amount deposited")
	sessionCloseCmd.Flags().Float64Var(&sessOMFinal, "orange", 0, "closing Orange Money balance")
	sessionCloseCmd.Flags().Float64Var(&sessMMFinal, "mtn", 0, "closing MTN Money balance")
	sessionCloseCmd.Flags().Float64Var(&sessSales, "ventes", 0, "value of goods sold")
	sessionCloseCmd.MarkFlagRequired("verse")
	sessionCloseCmd.MarkFlagRequired("ventes")

	sessionCmd.AddCommand(sessionOpenCmd, sessionCloseCmd)
	rootCmd.AddCommand(sessionCmd)
}
