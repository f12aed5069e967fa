package checkout

import (
	"strings"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CustomerInfo is what the shopper enters on the checkout form
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	Notes   string `json:"notes"`
	// Photo is an optional attachment, e.g. a payment screenshot
	Photo *Attachment `json:"-"`
}

// Attachment is a file sent alongside the order
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Normalize trims surrounding whitespace from the text fields
func (c CustomerInfo) Normalize() CustomerInfo {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// Validate checks that name, phone and address are present
func (c CustomerInfo) Validate() error {
	if err := validate.Struct(c.Normalize()); err != nil {
		return shared.NewValidationError("Name, phone and address are required")
	}
	return nil
}

// ItemRef is one (product id, quantity) pair sent to the order API. Prices
// are never sent; the server prices the order itself.
type ItemRef struct {
	ProductID catalog.ProductID `json:"product_id"`
	Quantity  int               `json:"quantity"`
}

// Request is a single checkout attempt
type Request struct {
	Customer CustomerInfo
	Items    []ItemRef
	// IdempotencyKey identifies this attempt to the server
	IdempotencyKey string
}

// NewRequest snapshots the cart lines into a request. The cart must be
// non-empty and the customer info complete.
func NewRequest(customer CustomerInfo, c cart.Cart, idempotencyKey string) (*Request, error) {
	if c.IsEmpty() {
		return nil, shared.NewValidationError("Cart is empty")
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	lines := c.Lines()
	items := make([]ItemRef, 0, len(lines))
	for _, l := range lines {
		items = append(items, ItemRef{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return &Request{
		Customer:       customer.Normalize(),
		Items:          items,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// Receipt is returned when the server confirms order creation
type Receipt struct {
	OrderID string
}
