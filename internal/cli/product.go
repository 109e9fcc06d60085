package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var productCmd = &cobra.Command{
	Use:   "product <name>",
	Short: "Show details for a single product",
	Long: `Look a product up by display name and show its details.

A product the service does not know simply yields an empty result.

Example:
  shopchat product "eMark GM4 Mini UPS"`,
	Args: cobra.ExactArgs(1),
	RunE: runProduct,
}

func runProduct(cmd *cobra.Command, args []string) error {
	name := args[0]

	detail, err := apiClient.SearchProduct(context.Background(), name)
	if err != nil {
		return fmt.Errorf("search product: %w", err)
	}
	if detail == nil {
		fmt.Printf("No product found matching %q.\n", name)
		return nil
	}

	fmt.Println(defaultTheme.userStyle().Render(detail.Name))
	if detail.CategoryName != "" {
		fmt.Printf("  Category: %s\n", detail.CategoryName)
	}
	if detail.SKU != "" {
		fmt.Printf("  SKU:      %s\n", detail.SKU)
	}
	if detail.Price > 0 {
		fmt.Printf("  Price:    Rs. %.2f\n", detail.Price)
	}
	if detail.Description != "" {
		fmt.Printf("\n%s\n", detail.Description)
	}
	return nil
}
