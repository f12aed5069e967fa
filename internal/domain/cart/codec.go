package cart

import (
	"encoding/json"
	"fmt"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// storedLine is the persisted form of a Line. Prices are JSON numbers.
type storedLine struct {
	ID       catalog.ProductID `json:"id"`
	Name     string            `json:"name"`
	Price    json.Number       `json:"price"`
	Image    string            `json:"image,omitempty"`
	Quantity int               `json:"quantity"`
}

// Encode serializes the cart as a JSON array of lines
func Encode(c Cart) ([]byte, error) {
	out := make([]storedLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, storedLine{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    json.Number(l.Price.String()),
			Image:    l.Image,
			Quantity: l.Quantity,
		})
	}
	return json.Marshal(out)
}

// Decode parses a persisted cart. Any structural problem (bad JSON, a
// quantity below 1, a missing or repeated product id, an unparsable price)
// is an error; callers treat that as "no cart".
func Decode(data []byte) (Cart, error) {
	var stored []storedLine
	if err := json.Unmarshal(data, &stored); err != nil {
		return Cart{}, fmt.Errorf("decoding cart: %w", err)
	}
	lines := make([]Line, 0, len(stored))
	seen := make(map[catalog.ProductID]bool, len(stored))
	for i, s := range stored {
		if s.ID.IsZero() {
			return Cart{}, fmt.Errorf("line %d: missing product id", i)
		}
		if seen[s.ID] {
			return Cart{}, fmt.Errorf("line %d: duplicate product id %s", i, s.ID)
		}
		if s.Quantity < 1 {
			return Cart{}, fmt.Errorf("line %d: quantity %d below 1", i, s.Quantity)
		}
		price, err := decimal.NewFromString(s.Price.String())
		if err != nil {
			return Cart{}, fmt.Errorf("line %d: price: %w", i, err)
		}
		if price.IsNegative() {
			return Cart{}, fmt.Errorf("line %d: negative price", i)
		}
		seen[s.ID] = true
		lines = append(lines, Line{
			ProductID: s.ID,
			Name:      s.Name,
			Price:     price,
			Image:     s.Image,
			Quantity:  s.Quantity,
		})
	}
	return Cart{lines: lines}, nil
}
