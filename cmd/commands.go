package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/honey-shop/cart/internal/admin"
	"github.com/honey-shop/cart/internal/cart/model"
	"github.com/honey-shop/cart/internal/cart/store"
	"github.com/honey-shop/cart/internal/checkout"
	"github.com/honey-shop/cart/internal/payments"
	"github.com/honey-shop/cart/internal/render"
	"github.com/spf13/cobra"
)

func newAddCommand(app *App) *cobra.Command {
	var shipping model.Shipping
	c := &cobra.Command{
		Use:   "add <product-id> <name> <price> [quantity]",
		Short: "Add a product to the cart or increase its quantity",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil || !(price >= 0) {
				return fmt.Errorf("invalid price %q", args[2])
			}
			quantity := 1
			if len(args) == 4 {
				q, ok := store.ParseQuantity(args[3])
				if !ok || !model.ValidQuantity(q) {
					return fmt.Errorf("quantity must be between %d and %d", model.MinQuantity, model.MaxQuantity)
				}
				quantity = q
			}

			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			unbind := render.Bind(s.Subscribe, render.NewBadge(app.Out))
			defer unbind()
			res, err := s.AddItem(cmd.Context(), args[0], args[1], price, quantity, shipping)
			if err != nil {
				return err
			}
			if !res.Ok() {
				fmt.Fprintf(app.Out, "product not added: %s\n", res)
			}
			return nil
		},
	}
	c.Flags().Float64Var(&shipping.Weight, "weight", 0, "unit weight")
	c.Flags().Float64Var(&shipping.Width, "width", 0, "unit width")
	c.Flags().Float64Var(&shipping.Height, "height", 0, "unit height")
	c.Flags().Float64Var(&shipping.Length, "length", 0, "unit length")
	return c
}

func newSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line (1-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			unbind := render.Bind(s.Subscribe, render.NewBadge(app.Out))
			defer unbind()

			res, err := s.UpdateQuantityText(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !res.Ok() {
				fmt.Fprintf(app.Out, "quantity not changed: %s\n", res)
			}
			return nil
		},
	}
}

func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <product-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a product from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			unbind := render.Bind(s.Subscribe, render.NewBadge(app.Out))
			defer unbind()
			return s.RemoveItem(cmd.Context(), args[0])
		},
	}
}

func newClearCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			unbind := render.Bind(s.Subscribe, render.NewBadge(app.Out))
			defer unbind()
			return s.Clear(cmd.Context())
		},
	}
}

func newShowCommand(app *App) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			lines := s.Lines()
			if asJSON {
				if lines == nil {
					lines = []model.CartLine{}
				}
				return writeJSON(app, lines)
			}
			render.NewTable(app.Out).Render(model.Event{Lines: lines, Totals: s.Totals()})
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON representation")
	return c
}

type checkoutOutput struct {
	OrderID    string           `json:"orderId"`
	OrderItems string           `json:"orderItems"`
	Parcel     checkout.Parcel  `json:"parcel"`
	Summary    checkout.Summary `json:"summary"`
	Lines      []model.CartLine `json:"lines"`
}

func newCheckoutCommand(app *App) *cobra.Command {
	var (
		delivery float64
		orderID  string
	)
	c := &cobra.Command{
		Use:   "checkout",
		Short: "Snapshot the cart for checkout and print the order form payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := app.Cart(ctx)
			if err != nil {
				return err
			}
			if err := checkout.Guard(s.Lines()); err != nil {
				return err
			}
			if err := s.SnapshotForCheckout(ctx); err != nil {
				return err
			}

			st, err := app.storage(ctx)
			if err != nil {
				return err
			}
			lines := store.LoadCheckoutSnapshot(ctx, st)
			if orderID == "" {
				orderID = checkout.NewOrderID()
			}
			items, err := checkout.EncodeOrderItems(orderID, lines)
			if err != nil {
				return err
			}
			return writeJSON(app, checkoutOutput{
				OrderID:    orderID,
				OrderItems: items,
				Parcel:     checkout.BuildParcel(lines),
				Summary:    checkout.Summarize(lines, delivery),
				Lines:      lines,
			})
		},
	}
	c.Flags().Float64Var(&delivery, "delivery", 0, "delivery cost chosen for the order")
	c.Flags().StringVar(&orderID, "order-id", "", "order reference (default a new UUID)")
	return c
}

func newSyncPaymentCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-payment",
		Short: "Clear the cart if the shop confirmed payment for this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Cart(cmd.Context())
			if err != nil {
				return err
			}
			cleared, err := payments.Sync(cmd.Context(), app.Payments(), s)
			if err != nil {
				return err
			}
			if cleared {
				fmt.Fprintln(app.Out, "payment confirmed, cart cleared")
			} else {
				fmt.Fprintln(app.Out, "no confirmed payment")
			}
			return nil
		},
	}
}

func newDeleteImageCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-image <product|category|user> <id> <filename>",
		Short: "Delete an image from a product, category or user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := admin.ParseEntity(args[0])
			if err != nil {
				return err
			}
			if err := app.Admin().DeleteImage(cmd.Context(), entity, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "image deleted")
			return nil
		},
	}
}

func newReorderCommand(app *App) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "reorder --file order.json",
		Short: "Save the showcase order of categories and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read showcase order: %w", err)
			}
			var order admin.ShowcaseOrder
			if err := json.Unmarshal(b, &order); err != nil {
				return fmt.Errorf("parse showcase order: %w", err)
			}
			if err := app.Admin().Reorder(cmd.Context(), order); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "showcase order saved")
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "JSON file with categoryOrder and productOrder")
	_ = c.MarkFlagRequired("file")
	return c
}

func writeJSON(app *App, v any) error {
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
