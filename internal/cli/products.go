package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the sellable product catalog",
	Long: `List the sellable product catalog, grouped by category.

This is the same catalog the inline order form offers for selection.`,
	Args: cobra.NoArgs,
	RunE: runProducts,
}

func runProducts(cmd *cobra.Command, args []string) error {
	products, err := apiClient.ProductsForOrderForm(context.Background())
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products available.")
		return nil
	}

	byCategory := make(map[string][]client.Product)
	for _, p := range products {
		cat := p.CategoryName
		if cat == "" {
			cat = "Uncategorized"
		}
		byCategory[cat] = append(byCategory[cat], p)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Printf("%s\n", defaultTheme.userStyle().Render(cat))
		items := byCategory[cat]
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		for _, p := range items {
			fmt.Printf("  %-50s Rs. %.2f", p.Name, p.Price)
			if p.SKU != "" {
				fmt.Printf("  %s", defaultTheme.hintStyle().Render("["+p.SKU+"]"))
			}
			fmt.Println()
		}
		fmt.Println()
	}

	return nil
}
