// Package cli is the storefront's text interface: the views rendered from
// store state and the commands that drive the stores.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Renderer writes views. It holds no state of its own.
type Renderer struct {
	printer  *message.Printer
	currency string
}

// NewRenderer creates a renderer labelling prices with currency
func NewRenderer(currency string) *Renderer {
	if currency == "" {
		currency = "Birr"
	}
	return &Renderer{
		printer:  message.NewPrinter(language.English),
		currency: currency,
	}
}

// Price formats an amount with digit grouping, e.g. "1,250 Birr"
func (r *Renderer) Price(amount decimal.Decimal) string {
	value := r.printer.Sprintf("%v", number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(2)))
	return value + " " + r.currency
}

// Header shows the title and the cart badge
func (r *Renderer) Header(w io.Writer, badge int) {
	fmt.Fprintf(w, "Lubex Lubricants   [Cart: %d]\n", badge)
}

// Categories lists the filters, marking the active one
func (r *Renderer) Categories(w io.Writer, categories []string, active string) {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == active {
			parts = append(parts, "["+c+"]")
		} else {
			parts = append(parts, c)
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// Products lists products one per line
func (r *Renderer) Products(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "%-6s %-32s %-22s %14s\n", p.ID, p.Name, p.Category, r.Price(p.Price))
	}
}

// CatalogError is shown when the catalog could not be loaded
func (r *Renderer) CatalogError(w io.Writer, err error) {
	fmt.Fprintf(w, "Failed to load products: %s\n", cause(err))
	fmt.Fprintln(w, "Run \"reload\" to try again.")
}

// ProductDetail shows one product
func (r *Renderer) ProductDetail(w io.Writer, p catalog.Product) {
	fmt.Fprintf(w, "%s\n", p.Name)
	fmt.Fprintf(w, "  Id:       %s\n", p.ID)
	if p.Category != "" {
		fmt.Fprintf(w, "  Category: %s\n", p.Category)
	}
	fmt.Fprintf(w, "  Price:    %s\n", r.Price(p.Price))
	fmt.Fprintf(w, "  Stock:    %d\n", p.Stock)
	fmt.Fprintf(w, "  Image:    %s\n", p.Image())
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

// Cart shows the cart drawer
func (r *Renderer) Cart(w io.Writer, lines []cart.Line, total decimal.Decimal) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	for i, l := range lines {
		fmt.Fprintf(w, "%2d. %-32s %3d x %-14s %14s\n", i+1, l.Name, l.Quantity, r.Price(l.Price), r.Price(l.Subtotal()))
		fmt.Fprintf(w, "    %s\n", l.DisplayImage())
	}
	fmt.Fprintf(w, "Total: %s\n", r.Price(total))
}

// CheckoutSummary is shown above the checkout form
func (r *Renderer) CheckoutSummary(w io.Writer, count int, total decimal.Decimal) {
	fmt.Fprintf(w, "Checkout: %d item(s), total %s\n", count, r.Price(total))
}

// OrderPlaced confirms a successful order
func (r *Renderer) OrderPlaced(w io.Writer, receipt *checkout.Receipt) {
	if receipt.OrderID == "" {
		fmt.Fprintln(w, "Order placed.")
		return
	}
	fmt.Fprintf(w, "Order placed. Your order id is %s.\n", receipt.OrderID)
}

// Error shows a failure by kind
func (r *Renderer) Error(w io.Writer, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		fmt.Fprintln(w, shared.Reason(err))
	case errors.Is(err, shared.ErrApplication):
		fmt.Fprintf(w, "Order failed: %s\n", shared.Reason(err))
	case errors.Is(err, shared.ErrNetwork):
		fmt.Fprintln(w, "Network error, please try again.")
	case errors.Is(err, shared.ErrCheckoutInFlight):
		fmt.Fprintln(w, "A checkout is already in progress.")
	case errors.Is(err, shared.ErrNotFound):
		fmt.Fprintln(w, shared.Reason(err))
	case errors.Is(err, shared.ErrFetch):
		r.CatalogError(w, err)
	case errors.Is(err, shared.ErrStorage):
		fmt.Fprintf(w, "Could not save your cart: %s\n", cause(err))
	default:
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}

// AdminProducts lists products for the operator
func (r *Renderer) AdminProducts(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "%-6s %-32s %-22s %14s  stock %-5d %s\n", p.ID, p.Name, p.Category, r.Price(p.Price), p.Stock, p.Image())
	}
}

// AdminFailure prints a rejected admin call with the raw server payload
func (r *Renderer) AdminFailure(w io.Writer, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) && len(de.Payload) > 0 {
		fmt.Fprintf(w, "Failed: %s\n", strings.TrimSpace(string(de.Payload)))
		return
	}
	fmt.Fprintf(w, "Failed: %s\n", err)
}

// cause returns the innermost message of err
func cause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
