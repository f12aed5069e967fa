package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/spf13/cobra"
)

// GlobalOptions are the flags shared by every command
type GlobalOptions struct {
	ConfigPath string
}

// StorefrontFactory wires a Storefront for one run. The returned func
// releases what the factory opened.
type StorefrontFactory func(ctx context.Context, opts GlobalOptions) (*Storefront, func(), error)

// NewStorefrontCommand builds the shopper command tree. With no subcommand
// the interactive shell runs on in. The returned func releases whatever the
// factory opened and is safe to call when nothing ran.
func NewStorefrontCommand(factory StorefrontFactory, in io.Reader, out io.Writer) (*cobra.Command, func()) {
	var (
		opts    GlobalOptions
		sf      *Storefront
		cleanup = func() {}
	)

	root := &cobra.Command{
		Use:           "lubex",
		Short:         "Lubex lubricants storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, done, err := factory(cmd.Context(), opts)
			if err != nil {
				return err
			}
			sf, cleanup = built, done
			sf.Out = out
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sf.RunShell(cmd.Context(), in)
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./config.toml, ~/.lubex/config.toml)")

	// run renders a failure the way the shell does before returning it
	run := func(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			err := fn(cmd.Context(), args)
			if err != nil {
				sf.Render.Error(out, err)
			}
			return err
		}
	}

	var category string
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, _ []string) error {
			if category != "" {
				if err := sf.Catalog.SetFilter(category); err != nil {
					return err
				}
			}
			if err := sf.Reload(ctx); err != nil {
				return err
			}
			sf.ShowCatalog(ctx)
			return nil
		}),
	}
	productsCmd.Flags().StringVarP(&category, "category", "c", "", "category filter")

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: run(func(context.Context, []string) error {
			sf.Render.Categories(out, sf.Catalog.Categories(), sf.Catalog.Filter())
			return nil
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show product details",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, args []string) error {
			return sf.ShowProduct(ctx, args[0])
		}),
	}

	var qty int
	addCmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, args []string) error {
			return sf.AddToCart(ctx, args[0], qty)
		}),
	}
	addCmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity")

	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(context.Context, []string) error {
			sf.ShowCart()
			return nil
		}),
	}

	adjust := func(use, short string, delta int) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <line>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, args []string) error {
				line, err := strconv.Atoi(args[0])
				if err != nil {
					return usage(use + " <line>")
				}
				return sf.Adjust(ctx, line, delta)
			}),
		}
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, _ []string) error {
			return sf.ClearCart(ctx)
		}),
	}

	var (
		customer  checkout.CustomerInfo
		photoPath string
	)
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, _ []string) error {
			photo, err := LoadAttachment(photoPath)
			if err != nil {
				return err
			}
			customer.Photo = photo
			return sf.PlaceOrder(ctx, customer)
		}),
	}
	checkoutCmd.Flags().StringVar(&customer.Name, "name", "", "your name")
	checkoutCmd.Flags().StringVar(&customer.Phone, "phone", "", "phone number")
	checkoutCmd.Flags().StringVar(&customer.Address, "address", "", "delivery address")
	checkoutCmd.Flags().StringVar(&customer.Notes, "notes", "", "order notes")
	checkoutCmd.Flags().StringVar(&photoPath, "photo", "", "photo to attach, e.g. a payment screenshot")

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive storefront",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sf.RunShell(cmd.Context(), in)
		},
	}

	root.AddCommand(productsCmd, categoriesCmd, showCmd, addCmd, cartCmd,
		adjust("inc", "Add one unit to a cart line", 1),
		adjust("dec", "Remove one unit from a cart line", -1),
		clearCmd, checkoutCmd, shellCmd)
	return root, func() { cleanup() }
}
