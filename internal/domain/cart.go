package domain

// LineItem is a single product selection in the cart. The JSON tags match
// the persisted cart format, so a stored cart round-trips unchanged.
type LineItem struct {
	ID         string  `json:"id" bson:"id"`
	Name       string  `json:"name" bson:"name"`
	UnitPrice  float64 `json:"price" bson:"price"`
	ImageRef   string  `json:"image" bson:"image"`
	ColorTag   string  `json:"color" bson:"color"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	Customized bool    `json:"customized,omitempty" bson:"customized,omitempty"`
}

// SameSelection reports whether two items are the same product selection,
// in which case adding again increments quantity instead of appending.
// Customized items are never merged.
func (i LineItem) SameSelection(other LineItem) bool {
	if i.Customized || other.Customized {
		return false
	}
	return i.Name == other.Name && i.ColorTag == other.ColorTag
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

const (
	// FlatShippingRate is charged whenever the cart is non-empty.
	FlatShippingRate = 9.99
	TaxRate          = 0.08
)

// ComputeTotals derives the pricing summary for a set of items. It is a pure
// function: no state is read or written, so repeated calls with the same
// items yield identical results.
func ComputeTotals(items []LineItem, discountFraction float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	var shipping float64
	if subtotal > 0 {
		shipping = FlatShippingRate
	}

	discount := subtotal * discountFraction
	tax := subtotal * TaxRate

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal - discount + shipping + tax,
	}
}
