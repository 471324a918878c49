package cmd

import (
	"fmt"

	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var produitsCategory string

var produitsCmd = &cobra.Command{
	Use:     "produits",
	Short:   "List the product catalog for a category",
	GroupID: "records",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		category, err := parseCategory(produitsCategory)
		if err != nil {
			output.Error("%v", err)
			return errSilent
		}
		products, err := app.store.ListProducts(category)
		if err != nil {
			output.Error("list products: %v", err)
			return err
		}
		if len(products) == 0 {
			output.Info("no products for %s; run 'bp sync' to pull the catalog", category)
			return nil
		}

		output.Title("%s", category)
		for _, p := range products {
			fmt.Printf("  #%-5d %-30s %8.0f\n", p.ID, p.Name, p.Price)
		}

		seller, err := app.store.ActiveSellerForCategory(category)
		if err != nil {
			output.Error("active seller: %v", err)
			return err
		}
		if seller != nil && seller.SellerID != nil {
			if u, err := app.store.GetUser(*seller.SellerID); err == nil && u != nil {
				output.Info("counter held by %s", u.Name)
			}
		}
		return nil
	},
}

func init() {
	produitsCmd.Flags().StringVar(&produitsCategory, "categorie", "", "category (boulangerie, patisserie)")
	produitsCmd.MarkFlagRequired("categorie")
	rootCmd.AddCommand(produitsCmd)
}
