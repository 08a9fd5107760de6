// Package notify sends the admin order-confirmation email after a payment
// has been verified. Delivery failures are reported to the caller for
// logging and retry; they never reach the buyer and never block the
// success flow.
package notify

import (
	"fmt"
	"html"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

// OrderConfirmation is the notification payload queued on verified payment.
type OrderConfirmation struct {
	OrderID         string            `json:"order_id"`
	CustomerEmail   string            `json:"customer_email"`
	Amount          float64           `json:"amount"` // major currency unit
	Items           []domain.LineItem `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
}

type Sender interface {
	Send(confirmation OrderConfirmation) error
}

type Mailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromAddr  string
	adminAddr string
}

func NewMailer(host string, port int, user, password, adminAddr string) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(host, port, user, password),
		fromName:  "Birkenstock Store",
		fromAddr:  user,
		adminAddr: adminAddr,
	}
}

func (m *Mailer) Send(confirmation OrderConfirmation) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromAddr, m.fromName)
	msg.SetHeader("To", m.adminAddr)
	msg.SetHeader("Subject", fmt.Sprintf("New Order #%s", confirmation.OrderID))
	msg.SetBody("text/html", buildBody(confirmation))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send order confirmation failed: %w", err)
	}
	return nil
}

func buildBody(c OrderConfirmation) string {
	var b strings.Builder

	b.WriteString("<h2>New Order Received</h2>")
	fmt.Fprintf(&b, "<p><strong>Order ID:</strong> %s</p>", html.EscapeString(c.OrderID))
	fmt.Fprintf(&b, "<p><strong>Customer:</strong> %s</p>", html.EscapeString(c.CustomerEmail))
	fmt.Fprintf(&b, "<p><strong>Amount:</strong> GHS %.2f</p>", c.Amount)

	b.WriteString("<h3>Order Items:</h3><ul>")
	for _, item := range c.Items {
		fmt.Fprintf(&b, "<li>%s - %d x GHS %.2f",
			html.EscapeString(item.Name), item.Quantity, item.UnitPrice)
		if item.ColorTag != "" {
			fmt.Fprintf(&b, "<br>Color: %s", html.EscapeString(item.ColorTag))
		}
		if item.Customized {
			b.WriteString("<br><em>Customized</em>")
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")

	fmt.Fprintf(&b, "<p><strong>Shipping Address:</strong></p><p>%s</p>",
		html.EscapeString(c.ShippingAddress))

	return b.String()
}
