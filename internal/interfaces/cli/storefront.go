package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	catalogapp "github.com/amishe1/lubex-bot/internal/application/catalog"
	cartapp "github.com/amishe1/lubex-bot/internal/application/cart"
	checkoutapp "github.com/amishe1/lubex-bot/internal/application/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/infrastructure/host"
)

// Storefront is the shopper-facing interface over the stores
type Storefront struct {
	Catalog  *catalogapp.Store
	Cart     *cartapp.Store
	Checkout *checkoutapp.Coordinator
	Host     host.Surface
	Render   *Renderer
	View     ViewState
	Out      io.Writer
}

// header writes the title with the current badge
func (s *Storefront) header() {
	s.Render.Header(s.Out, s.Cart.Count())
}

// Reload fetches the catalog again
func (s *Storefront) Reload(ctx context.Context) error {
	return s.Catalog.Load(ctx)
}

// ensureLoaded loads the catalog once
func (s *Storefront) ensureLoaded(ctx context.Context) error {
	if s.Catalog.Loaded() {
		return nil
	}
	return s.Catalog.Load(ctx)
}

// ShowCatalog renders the filtered product list
func (s *Storefront) ShowCatalog(ctx context.Context) {
	s.header()
	s.Render.Categories(s.Out, s.Catalog.Categories(), s.Catalog.Filter())
	if err := s.ensureLoaded(ctx); err != nil {
		s.Render.CatalogError(s.Out, err)
		return
	}
	s.Render.Products(s.Out, s.Catalog.Filtered())
}

// SetFilter switches category and re-renders
func (s *Storefront) SetFilter(ctx context.Context, category string) error {
	if err := s.Catalog.SetFilter(category); err != nil {
		return err
	}
	s.ShowCatalog(ctx)
	return nil
}

// ShowProduct renders the detail view of one product
func (s *Storefront) ShowProduct(ctx context.Context, ref string) error {
	p, err := s.Catalog.Get(ctx, ref)
	if err != nil {
		return err
	}
	s.Render.ProductDetail(s.Out, *p)
	return nil
}

// AddToCart adds quantity of the product with id ref. Quantities below one
// add a single unit.
func (s *Storefront) AddToCart(ctx context.Context, ref string, quantity int) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	p, err := s.Catalog.Find(ref)
	if err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}
	if err := s.Cart.Add(ctx, p, quantity); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "Added %d x %s.\n", quantity, p.Name)
	s.header()
	return nil
}

// ShowCart renders the cart drawer
func (s *Storefront) ShowCart() {
	s.header()
	s.Render.Cart(s.Out, s.Cart.Lines(), s.Cart.Total())
}

// Adjust changes the quantity of cart line number line (1-based)
func (s *Storefront) Adjust(ctx context.Context, line, delta int) error {
	changed, err := s.Cart.SetQuantity(ctx, line-1, delta)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(s.Out, "No cart line %d.\n", line)
	}
	s.ShowCart()
	return nil
}

// ClearCart empties the cart
func (s *Storefront) ClearCart(ctx context.Context) error {
	err := s.Cart.Clear(ctx)
	s.ShowCart()
	return err
}

// PlaceOrder submits the cart. On success the overlays are closed.
func (s *Storefront) PlaceOrder(ctx context.Context, customer checkout.CustomerInfo) error {
	s.Render.CheckoutSummary(s.Out, s.Cart.Count(), s.Cart.Total())
	receipt, err := s.Checkout.Submit(ctx, customer)
	if err != nil {
		return err
	}
	s.Render.OrderPlaced(s.Out, receipt)
	s.View.Reset()
	return nil
}

// LoadAttachment reads a local photo for the checkout form
func LoadAttachment(path string) (*checkout.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return &checkout.Attachment{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
