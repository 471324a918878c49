package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var (
	invOutgoingID int64
	invIncomingID int64
	invCategory   string
	invLines      []string
)

func parseCategory(raw string) (models.Category, error) {
	switch models.Category(raw) {
	case models.CategoryBakery, models.CategoryPastry:
		return models.Category(raw), nil
	}
	return "", fmt.Errorf("unknown category %q (boulangerie, patisserie)", raw)
}

// parseInventoryLine parses "productID:quantity", e.g. "12:3.5".
func parseInventoryLine(raw string) (models.InventoryLine, error) {
	productRaw, qtyRaw, found := strings.Cut(raw, ":")
	if !found {
		return models.InventoryLine{}, fmt.Errorf("line %q must be <produit>:<quantite>", raw)
	}
	productID, err := strconv.ParseInt(productRaw, 10, 64)
	if err != nil {
		return models.InventoryLine{}, fmt.Errorf("line %q: bad product id", raw)
	}
	qty, err := strconv.ParseFloat(qtyRaw, 64)
	if err != nil || qty < 0 {
		return models.InventoryLine{}, fmt.Errorf("line %q: bad quantity", raw)
	}
	return models.InventoryLine{ProductID: productID, RemainingQty: qty}, nil
}

var inventaireCmd = &cobra.Command{
	Use:     "inventaire",
	Short:   "Record a handover count between sellers",
	GroupID: "records",
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
		category, err := parseCategory(invCategory)
		if err != nil {
			output.Error("%v", err)
			return errSilent
		}
		if len(invLines) == 0 {
			output.Error("at least one --ligne <produit>:<quantite> is required")
			return errSilent
		}
		lines := make([]models.InventoryLine, 0, len(invLines))
		for _, raw := range invLines {
			line, err := parseInventoryLine(raw)
			if err != nil {
				output.Error("%v", err)
				return errSilent
			}
			lines = append(lines, line)
		}

		inv := &models.Inventory{
			OutgoingSellerID: invOutgoingID,
			IncomingSellerID: invIncomingID,
			Category:         category,
			TakenAt:          time.Now().UTC(),
		}
		if err := app.store.CreateInventory(inv, lines); err != nil {
			output.Error("create inventory: %v", err)
			return err
		}
		output.Success("inventory #%d with %d lines recorded %s",
			inv.ID, len(lines), output.FormatSyncStatus(inv.SyncStatus))
		return nil
	},
}

func init() {
	inventaireCmd.Flags().Int64Var(&invOutgoingID, "sortant", 0, "outgoing seller id")
	inventaireCmd.Flags().Int64Var(&invIncomingID, "entrant", 0, "incoming seller id")
	inventaireCmd.Flags().StringVar(&invCategory, "categorie", "", "category (boulangerie, patisserie)")
	inventaireCmd.Flags().StringArrayVar(&invLines, "ligne", nil, "per-product count as <produit>:<quantite>, repeatable")
	inventaireCmd.MarkFlagRequired("sortant")
	inventaireCmd.MarkFlagRequired("entrant")
	inventaireCmd.MarkFlagRequired("categorie")
	rootCmd.AddCommand(inventaireCmd)
}
