package checkout

import (
	"errors"
	"testing"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() CustomerInfo {
	return CustomerInfo{Name: "Abebe", Phone: "+251911000000", Address: "Bole, Addis Ababa"}
}

func TestCustomerInfo_Validate(t *testing.T) {
	t.Run("accepts complete info", func(t *testing.T) {
		assert.NoError(t, validCustomer().Validate())
	})

	for _, field := range []string{"name", "phone", "address"} {
		t.Run("rejects missing "+field, func(t *testing.T) {
			c := validCustomer()
			switch field {
			case "name":
				c.Name = "   "
			case "phone":
				c.Phone = ""
			case "address":
				c.Address = "\t"
			}
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}

func TestNewRequest(t *testing.T) {
	c := cart.Empty().
		Add(catalog.Product{ID: catalog.NewProductID("p1"), Price: decimal.NewFromInt(100)}, 2).
		Add(catalog.Product{ID: catalog.NewNumericProductID(9), Price: decimal.NewFromInt(5)}, 1)

	t.Run("snapshots ids and quantities", func(t *testing.T) {
		customer := validCustomer()
		customer.Notes = "  call first "

		req, err := NewRequest(customer, c, "key-1")
		require.NoError(t, err)
		assert.Equal(t, []ItemRef{
			{ProductID: catalog.NewProductID("p1"), Quantity: 2},
			{ProductID: catalog.NewNumericProductID(9), Quantity: 1},
		}, req.Items)
		assert.Equal(t, "call first", req.Customer.Notes)
		assert.Equal(t, "key-1", req.IdempotencyKey)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		_, err := NewRequest(validCustomer(), cart.Empty(), "k")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("rejects incomplete customer info", func(t *testing.T) {
		_, err := NewRequest(CustomerInfo{Name: "x"}, c, "k")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
