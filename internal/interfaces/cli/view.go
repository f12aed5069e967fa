package cli

// ViewState is what is on screen. It is separate from the stores so they
// need no rendering to test.
type ViewState struct {
	CartOpen     bool
	CheckoutOpen bool
}

// ToggleCart opens or closes the cart drawer
func (v *ViewState) ToggleCart() {
	v.CartOpen = !v.CartOpen
}

// OpenCheckout shows the checkout form over the open cart
func (v *ViewState) OpenCheckout() {
	v.CartOpen = true
	v.CheckoutOpen = true
}

// Reset closes every overlay, e.g. after an order
func (v *ViewState) Reset() {
	v.CartOpen = false
	v.CheckoutOpen = false
}
