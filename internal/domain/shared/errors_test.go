package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", NewNetworkError(errors.New("dial tcp: refused")))

		assert.True(t, errors.Is(err, ErrNetwork))
		assert.False(t, errors.Is(err, ErrApplication))
	})

	t.Run("exposes the cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewFetchError(cause)

		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "Failed to load products: boom", err.Error())
	})
}

func TestNewApplicationError(t *testing.T) {
	err := NewApplicationError("out_of_stock", []byte(`{"ok":false,"reason":"out_of_stock"}`))

	assert.Equal(t, "out_of_stock", err.Error())
	assert.Equal(t, "out_of_stock", Reason(err))
	assert.Equal(t, `{"ok":false,"reason":"out_of_stock"}`, string(err.Payload))
	assert.True(t, errors.Is(err, ErrApplication))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "plain", Reason(errors.New("plain")))
	assert.Equal(t, "Cart is empty", Reason(fmt.Errorf("x: %w", NewValidationError("Cart is empty"))))
}
