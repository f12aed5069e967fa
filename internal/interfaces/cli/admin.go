package cli

import (
	"context"
	"fmt"
	"io"

	adminapp "github.com/amishe1/lubex-bot/internal/application/admin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AdminConsole is the operator-facing interface
type AdminConsole struct {
	Admin  *adminapp.Coordinator
	Render *Renderer
	Out    io.Writer
}

// AdminOptions are the admin flags shared by every command
type AdminOptions struct {
	GlobalOptions
	Token string
}

// AdminFactory wires an AdminConsole for one run
type AdminFactory func(ctx context.Context, opts AdminOptions) (*AdminConsole, func(), error)

// NewAdminCommand builds the operator command tree
func NewAdminCommand(factory AdminFactory, out io.Writer) (*cobra.Command, func()) {
	var (
		opts    AdminOptions
		console *AdminConsole
		cleanup = func() {}
	)

	root := &cobra.Command{
		Use:           "lubex-admin",
		Short:         "Manage the Lubex product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, done, err := factory(cmd.Context(), opts)
			if err != nil {
				return err
			}
			console, cleanup = built, done
			console.Out = out
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file")
	root.PersistentFlags().StringVar(&opts.Token, "token", "", "admin token (default: admin.token from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := console.Admin.List(cmd.Context())
			if err != nil {
				console.Render.Error(out, err)
				return err
			}
			console.Render.AdminProducts(out, products)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := console.Admin.Get(cmd.Context(), args[0])
			if err != nil {
				console.Render.Error(out, err)
				return err
			}
			console.Render.ProductDetail(out, *p)
			return nil
		},
	}

	var createFields adminapp.ProductFields
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := console.Admin.Create(cmd.Context(), createFields); err != nil {
				console.Render.AdminFailure(out, err)
				return err
			}
			fmt.Fprintln(out, "Product created.")
			return nil
		},
	}
	bindProductFlags(createCmd.Flags(), &createFields)

	var updateFields adminapp.ProductFields
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product; unset flags keep the current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := console.Admin.Get(ctx, args[0])
			if err != nil {
				console.Render.Error(out, err)
				return err
			}
			fields := mergeChanged(cmd.Flags(), adminapp.FieldsFromProduct(*current), updateFields)
			if err := console.Admin.Update(ctx, args[0], fields); err != nil {
				console.Render.AdminFailure(out, err)
				return err
			}
			fmt.Fprintln(out, "Product updated.")
			return nil
		},
	}
	bindProductFlags(updateCmd.Flags(), &updateFields)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := console.Admin.Delete(cmd.Context(), args[0]); err != nil {
				console.Render.AdminFailure(out, err)
				return err
			}
			fmt.Fprintln(out, "Product deleted.")
			return nil
		},
	}

	root.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return root, func() { cleanup() }
}

func bindProductFlags(fs *pflag.FlagSet, f *adminapp.ProductFields) {
	fs.StringVar(&f.Name, "name", "", "product name")
	fs.StringVar(&f.Category, "category", "", "category")
	fs.StringVar(&f.Price, "price", "", "price")
	fs.StringVar(&f.Stock, "stock", "", "units in stock")
	fs.StringVar(&f.Description, "description", "", "description")
	fs.StringVar(&f.ImageURL, "image-url", "", "image URL")
	fs.StringVar(&f.ImagePath, "image", "", "local image file to upload")
}

// mergeChanged overlays the flags the operator actually set onto base
func mergeChanged(fs *pflag.FlagSet, base, set adminapp.ProductFields) adminapp.ProductFields {
	if fs.Changed("name") {
		base.Name = set.Name
	}
	if fs.Changed("category") {
		base.Category = set.Category
	}
	if fs.Changed("price") {
		base.Price = set.Price
	}
	if fs.Changed("stock") {
		base.Stock = set.Stock
	}
	if fs.Changed("description") {
		base.Description = set.Description
	}
	if fs.Changed("image-url") {
		base.ImageURL = set.ImageURL
	}
	if fs.Changed("image") {
		base.ImagePath = set.ImagePath
	}
	return base
}
