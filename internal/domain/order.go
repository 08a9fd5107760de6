package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Order is the ephemeral snapshot handed to the payment gateway at checkout
// time. It is never persisted locally; the provider is the source of truth
// for payment state.
type Order struct {
	OrderID         string     `json:"orderId"`
	Items           []LineItem `json:"items"`
	ShippingAddress string     `json:"shippingAddress"`
	ContactPhone    string     `json:"phone"`
	TotalAmount     float64    `json:"totalAmount"`
}

// NewOrderID returns a collision-resistant order identifier with the
// store's customary prefix.
func NewOrderID() string {
	return fmt.Sprintf("BIRK-%s", uuid.New().String())
}
