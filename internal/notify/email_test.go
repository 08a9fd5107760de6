package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

func TestBuildBody_ContainsOrderSummary(t *testing.T) {
	body := buildBody(OrderConfirmation{
		OrderID:       "BIRK-42",
		CustomerEmail: "buyer@example.com",
		Amount:        117.99,
		Items: []domain.LineItem{
			{Name: "Arizona", UnitPrice: 50.00, Quantity: 2, ColorTag: "#8B4513"},
			{Name: "Gizeh", UnitPrice: 39.95, Quantity: 1, Customized: true},
		},
		ShippingAddress: "12 High St, Accra, 00233",
	})

	assert.Contains(t, body, "Order ID:</strong> BIRK-42")
	assert.Contains(t, body, "buyer@example.com")
	assert.Contains(t, body, "GHS 117.99")
	assert.Contains(t, body, "Arizona - 2 x GHS 50.00")
	assert.Contains(t, body, "Color: #8B4513")
	assert.Contains(t, body, "<em>Customized</em>")
	assert.Contains(t, body, "12 High St, Accra, 00233")
}

func TestBuildBody_EscapesUserInput(t *testing.T) {
	body := buildBody(OrderConfirmation{
		OrderID:         "BIRK-1",
		ShippingAddress: "<script>alert(1)</script>",
	})

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
