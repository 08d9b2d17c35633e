package domain

import "github.com/google/uuid"

// CartItem is one cart line: a product snapshot and a positive quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// AddLine merges a product into a set of cart lines. An existing line for the
// same product id gets its quantity bumped and keeps the snapshot it already
// holds; otherwise a new line with quantity 1 is appended. Line order is
// stable for display.
func AddLine(items []CartItem, p Product) []CartItem {
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, CartItem{Product: p.Clone(), Quantity: 1})
}

// RemoveLine drops the line for productID if present. Removing an absent line
// is a no-op, not an error.
func RemoveLine(items []CartItem, productID uuid.UUID) []CartItem {
	out := items[:0]
	for _, item := range items {
		if item.Product.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity sets a line's quantity to exactly quantity. A quantity of zero
// or below removes the line.
func SetQuantity(items []CartItem, productID uuid.UUID, quantity int) []CartItem {
	if quantity <= 0 {
		return RemoveLine(items, productID)
	}
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	return items
}

// CloneLines deep-copies a set of cart lines so order snapshots stay
// independent of later cart mutation.
func CloneLines(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = CartItem{Product: item.Product.Clone(), Quantity: item.Quantity}
	}
	return out
}
