package cart

import (
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// State is the coarse state of a cart
type State string

const (
	StateEmpty    State = "EMPTY"
	StateNonEmpty State = "NON_EMPTY"
)

// Line is one product in the cart with its aggregated quantity. Name, Price
// and Image are a snapshot taken when the product was first added; later
// catalog changes do not touch them.
type Line struct {
	ProductID catalog.ProductID
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

// Subtotal returns quantity x price
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DisplayImage returns the image reference or the placeholder
func (l Line) DisplayImage() string {
	if l.Image == "" {
		return catalog.PlaceholderImage
	}
	return l.Image
}

// Cart is an ordered list of lines, at most one per product. Values are
// immutable: every mutation returns a new Cart and leaves the receiver as
// it was.
type Cart struct {
	lines []Line
}

// Empty returns a cart with no lines
func Empty() Cart {
	return Cart{}
}

// Lines returns a copy of the lines in insertion order
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// State returns StateEmpty or StateNonEmpty
func (c Cart) State() State {
	if c.IsEmpty() {
		return StateEmpty
	}
	return StateNonEmpty
}

// Count returns the sum of all line quantities
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of quantity x price over all lines. It is computed
// on every call.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// IndexOf returns the position of the line for id, or -1
func (c Cart) IndexOf(id catalog.ProductID) int {
	for i, l := range c.lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

// Add merges quantity of product into the cart. Quantities below 1 are
// coerced to 1. An existing line keeps its original snapshot and only its
// quantity grows.
func (c Cart) Add(p catalog.Product, quantity int) Cart {
	if quantity < 1 {
		quantity = 1
	}
	lines := c.Lines()
	if i := c.IndexOf(p.ID); i >= 0 {
		lines[i].Quantity += quantity
		return Cart{lines: lines}
	}
	lines = append(lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.ImageURL,
		Quantity:  quantity,
	})
	return Cart{lines: lines}
}

// SetQuantity adjusts the line at index by delta. A line whose quantity
// drops to zero or below is removed. An index out of range leaves the cart
// unchanged and reports false.
func (c Cart) SetQuantity(index, delta int) (Cart, bool) {
	if index < 0 || index >= len(c.lines) {
		return c, false
	}
	lines := c.Lines()
	lines[index].Quantity += delta
	if lines[index].Quantity <= 0 {
		lines = append(lines[:index], lines[index+1:]...)
	}
	return Cart{lines: lines}, true
}

// Equal reports whether both carts hold identical lines in the same order
func (c Cart) Equal(other Cart) bool {
	if len(c.lines) != len(other.lines) {
		return false
	}
	for i := range c.lines {
		a, b := c.lines[i], other.lines[i]
		if a.ProductID != b.ProductID || a.Name != b.Name || a.Image != b.Image ||
			a.Quantity != b.Quantity || !a.Price.Equal(b.Price) {
			return false
		}
	}
	return true
}
