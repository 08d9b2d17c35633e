package domain

// ShippingFee is the flat shipping charge applied to any non-empty cart.
const ShippingFee = 10.0

// EffectivePrice derives the sellable price from a list price and a discount
// fraction in [0, 1). Arithmetic stays unrounded; formatting for display is a
// presentation concern.
func EffectivePrice(listPrice, discount float64) float64 {
	return listPrice * (1 - discount)
}

// Subtotal sums the discounted line prices of a cart.
func Subtotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += EffectivePrice(item.Product.Price, item.Product.Discount) * float64(item.Quantity)
	}
	return total
}

// CheckoutTotal is the subtotal plus flat shipping, with shipping waived for
// an empty cart.
func CheckoutTotal(items []CartItem) float64 {
	if len(items) == 0 {
		return 0
	}
	return Subtotal(items) + ShippingFee
}

// ItemCount sums the quantities across all lines.
func ItemCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
