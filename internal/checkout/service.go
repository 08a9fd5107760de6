// Package checkout is the gateway adapter between the cart and the payment
// provider. It validates checkout requests, forwards them to the provider
// and reconciles results: a payment is only ever treated as successful
// after the provider itself confirms it.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
	"github.com/tiankay999/Kay-Birks-website/internal/notify"
	"github.com/tiankay999/Kay-Birks-website/internal/payment"
)

type Provider interface {
	Initialize(ctx context.Context, email string, amount float64, metadata payment.OrderMetadata) (*payment.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*payment.VerifyResponse, error)
}

// Ledger queues the one-shot confirmation notification, idempotent per
// order id.
type Ledger interface {
	Enqueue(ctx context.Context, orderID string, payload []byte) (bool, error)
}

type InitializeRequest struct {
	Email    string           `json:"email"`
	Amount   float64          `json:"amount"`
	Metadata CheckoutMetadata `json:"metadata"`
}

type CheckoutMetadata struct {
	Items      []domain.LineItem `json:"items"`
	Phone      string            `json:"phone"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	PostalCode string            `json:"postalCode"`
}

type InitializeResult struct {
	OrderID          string `json:"orderId"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
}

type CheckoutService interface {
	Initialize(ctx context.Context, request *InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*payment.VerifyResponse, error)
}

type CheckoutServiceImpl struct {
	provider Provider
	ledger   Ledger
	attempts *AttemptTracker
	sfg      singleflight.Group // collapses concurrent verifies of one reference

	// onConfirmed runs after a payment has been verified as successful;
	// the cart side hooks its clearing here so clearing can never precede
	// verification.
	onConfirmed func(context.Context)
}

func NewCheckoutService(provider Provider, ledger Ledger, attempts *AttemptTracker, onConfirmed func(context.Context)) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		provider:    provider,
		ledger:      ledger,
		attempts:    attempts,
		onConfirmed: onConfirmed,
	}
}

// Initialize validates the checkout request and asks the provider for a
// payment page. Validation failures perform no network call.
func (s *CheckoutServiceImpl) Initialize(ctx context.Context, request *InitializeRequest) (*InitializeResult, error) {
	if err := validate(request); err != nil {
		return nil, err
	}

	order := domain.Order{
		OrderID: domain.NewOrderID(),
		Items:   request.Metadata.Items,
		ShippingAddress: fmt.Sprintf("%s, %s, %s",
			request.Metadata.Address, request.Metadata.City, request.Metadata.PostalCode),
		ContactPhone: request.Metadata.Phone,
		TotalAmount:  request.Amount,
	}

	metadata := payment.OrderMetadata{
		OrderID:         order.OrderID,
		Items:           order.Items,
		ShippingAddress: order.ShippingAddress,
		Phone:           order.ContactPhone,
	}

	resp, err := s.provider.Initialize(ctx, request.Email, request.Amount, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.attempts.Track(resp.Data.Reference, order.OrderID)
	log.Printf("checkout initialized order = %v reference = %v", order.OrderID, resp.Data.Reference)

	return &InitializeResult{
		OrderID:          order.OrderID,
		Reference:        resp.Data.Reference,
		AuthorizationURL: resp.Data.AuthorizationURL,
	}, nil
}

func validate(request *InitializeRequest) error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"email", request.Email},
		{"phone", request.Metadata.Phone},
		{"address", request.Metadata.Address},
		{"city", request.Metadata.City},
		{"postalCode", request.Metadata.PostalCode},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Verify re-queries the provider for the final status of a reference and
// returns the raw status payload regardless of outcome. On success it
// queues the confirmation notification (once per order) and runs the
// confirmed hook.
func (s *CheckoutServiceImpl) Verify(ctx context.Context, reference string) (*payment.VerifyResponse, error) {
	v, err, _ := s.sfg.Do(reference, func() (interface{}, error) {
		return s.verify(ctx, reference)
	})
	if err != nil {
		return nil, err
	}
	return v.(*payment.VerifyResponse), nil
}

func (s *CheckoutServiceImpl) verify(ctx context.Context, reference string) (*payment.VerifyResponse, error) {
	s.transition(reference, domain.CheckoutStatusVerifying)

	resp, err := s.provider.Verify(ctx, reference)
	if err != nil {
		// Not a final answer; the attempt stays verifiable.
		s.transition(reference, domain.CheckoutStatusAwaitingProvider)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	switch {
	case resp.Data.Succeeded():
		s.queueConfirmation(ctx, resp.Data)
		s.transition(reference, domain.CheckoutStatusConfirmed)
		if s.onConfirmed != nil {
			s.onConfirmed(ctx)
		}
	case finalFailure(resp.Data.Status):
		s.transition(reference, domain.CheckoutStatusFailed)
	default:
		s.transition(reference, domain.CheckoutStatusAwaitingProvider)
	}

	return resp, nil
}

func finalFailure(status string) bool {
	switch status {
	case "failed", "abandoned", "reversed":
		return true
	}
	return false
}

// queueConfirmation never fails the verify flow: the payment has already
// succeeded, so notification problems are logged and retried by the
// dispatcher, not surfaced to the buyer.
func (s *CheckoutServiceImpl) queueConfirmation(ctx context.Context, data payment.VerifyData) {
	confirmation := notify.OrderConfirmation{
		OrderID:         data.Metadata.OrderID,
		CustomerEmail:   data.Customer.Email,
		Amount:          float64(data.Amount) / 100,
		Items:           data.Metadata.Items,
		ShippingAddress: data.Metadata.ShippingAddress,
	}

	payload, err := json.Marshal(confirmation)
	if err != nil {
		log.Printf("failed to marshal confirmation for order %v: %v", confirmation.OrderID, err)
		return
	}

	queued, err := s.ledger.Enqueue(ctx, confirmation.OrderID, payload)
	if err != nil {
		log.Printf("failed to queue confirmation for order %v: %v", confirmation.OrderID, err)
		return
	}
	if !queued {
		log.Printf("confirmation for order %v already queued, skipping", confirmation.OrderID)
	}
}

func (s *CheckoutServiceImpl) transition(reference string, to domain.CheckoutStatus) {
	err := s.attempts.Transition(reference, to)
	if err == nil || errors.Is(err, ErrUnknownAttempt) {
		// Unknown references are fine: the adapter is stateless per request
		// and callbacks may land on an instance that never saw Initialize.
		return
	}
	log.Printf("attempt %v cannot move to %v: %v", reference, to, err)
}
