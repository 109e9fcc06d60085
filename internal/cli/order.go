package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/orderform"
	"github.com/spf13/cobra"
)

var (
	orderItems   []string
	orderName    string
	orderEmail   string
	orderPhone   string
	orderAddress string
	orderNotes   string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Submit an order request",
	Long: `Submit an order request outside of a chat session.

Items take the form "<product name>" or "<product name>:<quantity>";
repeat --item for multiple lines. The same validation applies as in the
inline chat form.

Examples:
  shopchat order --item "eMark GM4 Mini UPS" \
    --name "J. Perera" --email j.perera@example.com --phone 0712345678
  shopchat order --item "Mini UPS:2" --item "Smart Camera" \
    --name "J. Perera" --email j.perera@example.com --phone "071-234 5678" \
    --address "12 Main St, Colombo" --notes "Deliver after 5pm"`,
	Args: cobra.NoArgs,
	RunE: runOrder,
}

func init() {
	orderCmd.Flags().StringArrayVarP(&orderItems, "item", "i", nil, "order line, \"product\" or \"product:qty\" (repeatable)")
	orderCmd.Flags().StringVar(&orderName, "name", "", "customer name")
	orderCmd.Flags().StringVar(&orderEmail, "email", "", "customer email")
	orderCmd.Flags().StringVar(&orderPhone, "phone", "", "customer phone (10 digits)")
	orderCmd.Flags().StringVar(&orderAddress, "address", "", "delivery address (optional)")
	orderCmd.Flags().StringVar(&orderNotes, "notes", "", "order notes (optional)")
}

func runOrder(cmd *cobra.Command, args []string) error {
	st := orderform.State{
		Items: parseOrderItems(orderItems),
		Customer: orderform.Customer{
			Name:    orderName,
			Email:   orderEmail,
			Phone:   orderPhone,
			Address: orderAddress,
			Notes:   orderNotes,
		},
		Status: orderform.StatusIdle,
	}

	if msg := orderform.Validate(st); msg != "" {
		return errors.New(msg)
	}

	err := apiClient.SubmitOrder(context.Background(), buildOrderRequest(st))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("session rejected by the service: run 'shopchat login' and export SHOPCHAT_TOKEN")
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return errors.New(apiErr.Detail)
		}
		return fmt.Errorf("submit order: %w", err)
	}

	fmt.Println(defaultTheme.successStyle().Render("✓ Order Request Sent!"))
	fmt.Println("Thank you for your request.")
	return nil
}

// parseOrderItems turns --item values into order lines. A trailing ":<n>"
// is a quantity; anything else, colons included, belongs to the product
// name. No --item at all yields the single empty line validation rejects.
func parseOrderItems(raw []string) []orderform.Line {
	if len(raw) == 0 {
		return []orderform.Line{{Quantity: 1}}
	}

	lines := make([]orderform.Line, 0, len(raw))
	for _, item := range raw {
		name, qty := item, 1
		if idx := strings.LastIndex(item, ":"); idx >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(item[idx+1:])); err == nil && n >= 1 {
				name, qty = item[:idx], n
			}
		}
		lines = append(lines, orderform.Line{
			ProductSelection: strings.TrimSpace(name),
			Quantity:         qty,
		})
	}
	return lines
}
