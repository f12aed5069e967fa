package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
)

const shellHelp = `Commands:
  products                 list products under the active category
  categories               list categories
  filter <category>        switch category
  show <id>                product details
  add <id> [qty]           add to cart
  cart                     open or close the cart
  inc <line> | dec <line>  change a cart line quantity
  clear                    empty the cart
  checkout                 place the order
  reload                   fetch the catalog again
  help                     this text
  quit                     leave`

// RunShell reads commands from in until quit or EOF. Errors are rendered
// and the shell keeps going.
func (s *Storefront) RunShell(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.Host.Expand(ctx)
	s.ShowCatalog(ctx)

	for {
		fmt.Fprint(s.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.Out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, scanner, fields); err != nil {
			s.Render.Error(s.Out, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Storefront) dispatch(ctx context.Context, scanner *bufio.Scanner, fields []string) error {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "products", "ls":
		s.ShowCatalog(ctx)
	case "categories":
		s.Render.Categories(s.Out, s.Catalog.Categories(), s.Catalog.Filter())
	case "filter":
		if len(args) == 0 {
			return s.SetFilter(ctx, "All")
		}
		return s.SetFilter(ctx, strings.Join(args, " "))
	case "show":
		if len(args) != 1 {
			return usage("show <id>")
		}
		return s.ShowProduct(ctx, args[0])
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return usage("add <id> [qty]")
		}
		qty := 1
		if len(args) == 2 {
			qty, _ = strconv.Atoi(args[1])
		}
		return s.AddToCart(ctx, args[0], qty)
	case "cart":
		s.View.ToggleCart()
		if s.View.CartOpen {
			s.ShowCart()
		} else {
			s.header()
		}
	case "inc", "dec":
		if len(args) != 1 {
			return usage(cmd + " <line>")
		}
		line, err := strconv.Atoi(args[0])
		if err != nil {
			return usage(cmd + " <line>")
		}
		delta := 1
		if cmd == "dec" {
			delta = -1
		}
		return s.Adjust(ctx, line, delta)
	case "clear":
		return s.ClearCart(ctx)
	case "checkout":
		if s.Cart.IsEmpty() {
			return shared.NewValidationError("Cart is empty")
		}
		s.View.OpenCheckout()
		customer, err := s.readCustomer(scanner)
		if err != nil {
			return err
		}
		return s.PlaceOrder(ctx, customer)
	case "reload":
		if err := s.Reload(ctx); err != nil {
			return err
		}
		s.ShowCatalog(ctx)
	case "help":
		fmt.Fprintln(s.Out, shellHelp)
	default:
		fmt.Fprintf(s.Out, "Unknown command %q. Type help.\n", cmd)
	}
	return nil
}

// readCustomer prompts for the checkout form fields
func (s *Storefront) readCustomer(scanner *bufio.Scanner) (checkout.CustomerInfo, error) {
	ask := func(label string) string {
		fmt.Fprintf(s.Out, "%s: ", label)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	customer := checkout.CustomerInfo{
		Name:    ask("Name"),
		Phone:   ask("Phone"),
		Address: ask("Address"),
		Notes:   ask("Notes (optional)"),
	}
	photo, err := LoadAttachment(ask("Photo file (optional)"))
	if err != nil {
		return customer, err
	}
	customer.Photo = photo
	return customer, nil
}

func usage(text string) error {
	return fmt.Errorf("usage: %s", text)
}
