package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products without an image reference
const PlaceholderImage = "/webapp/placeholder.jpg"

// ProductID is the server-assigned product identifier. The backend may send
// it as a JSON string or a JSON number; the original form is kept so it
// round-trips unchanged into cart storage and checkout payloads.
type ProductID struct {
	raw     string
	numeric bool
}

// NewProductID creates a string-typed identifier
func NewProductID(id string) ProductID {
	return ProductID{raw: id}
}

// NewNumericProductID creates a number-typed identifier
func NewNumericProductID(id int64) ProductID {
	return ProductID{raw: strconv.FormatInt(id, 10), numeric: true}
}

// ParseProductID reads an identifier typed by a user. Integer text becomes
// a numeric id, anything else a string id.
func ParseProductID(text string) ProductID {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil && strconv.FormatInt(n, 10) == text {
		return NewNumericProductID(n)
	}
	return NewProductID(text)
}

// String returns the identifier text
func (id ProductID) String() string {
	return id.raw
}

// IsZero reports whether the identifier is empty
func (id ProductID) IsZero() bool {
	return id.raw == ""
}

// MarshalJSON emits the identifier in the form it was received
func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.raw), nil
	}
	return json.Marshal(id.raw)
}

// UnmarshalJSON accepts a JSON string or number
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ProductID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID{raw: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID{raw: n.String(), numeric: true}
	return nil
}

// Product is a read-only catalog entry owned by the server
type Product struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Image returns the image reference, falling back to the placeholder
func (p Product) Image() string {
	if p.ImageURL == "" {
		return PlaceholderImage
	}
	return p.ImageURL
}
