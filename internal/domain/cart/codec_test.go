package cart

import (
	"testing"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("round-trips a cart", func(t *testing.T) {
		num := product("", 0)
		num.ID = catalog.NewNumericProductID(12)
		num.Price = decimal.RequireFromString("19.99")
		num.ImageURL = ""

		c := Empty().Add(product("p1", 100), 2).Add(num, 3)

		data, err := Encode(c)
		require.NoError(t, err)

		restored, err := Decode(data)
		require.NoError(t, err)
		assert.True(t, restored.Equal(c))
	})

	t.Run("writes the storefront line format", func(t *testing.T) {
		c := Empty().Add(product("p1", 100), 2)

		data, err := Encode(c)
		require.NoError(t, err)
		assert.JSONEq(t,
			`[{"id":"p1","name":"Product p1","price":100,"image":"https://img.example.com/p1.jpg","quantity":2}]`,
			string(data))
	})

	t.Run("empty cart encodes as empty array", func(t *testing.T) {
		data, err := Encode(Empty())
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("reads numeric ids and prices", func(t *testing.T) {
		c, err := Decode([]byte(`[{"id":5,"name":"Gear oil","price":"1250.5","quantity":1}]`))
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, catalog.NewNumericProductID(5), c.Lines()[0].ProductID)
		assert.True(t, c.Total().Equal(decimal.RequireFromString("1250.5")))
	})
}

func TestDecode_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{{`,
		"object":         `{"id":"p1"}`,
		"zero quantity":  `[{"id":"p1","name":"x","price":1,"quantity":0}]`,
		"missing id":     `[{"name":"x","price":1,"quantity":1}]`,
		"duplicate id":   `[{"id":"p1","price":1,"quantity":1},{"id":"p1","price":1,"quantity":2}]`,
		"missing price":  `[{"id":"p1","quantity":1}]`,
		"negative price": `[{"id":"p1","price":-3,"quantity":1}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.Error(t, err)
		})
	}
}
