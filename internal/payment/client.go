// Package payment is the HTTP client for the Paystack transaction API. The
// provider owns the payment lifecycle; this client only initializes
// transactions and re-queries their final status.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

const (
	// Currency for mobile money payments.
	Currency       = "GHS"
	defaultTimeout = 30 * time.Second
)

// Channels offered on the provider's payment page.
var Channels = []string{"mobile_money"}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

// OrderMetadata travels with the transaction and comes back on verify; it
// carries everything the confirmation email needs.
type OrderMetadata struct {
	OrderID         string            `json:"orderId"`
	Items           []domain.LineItem `json:"items"`
	ShippingAddress string            `json:"shippingAddress"`
	Phone           string            `json:"phone"`
}

type initializeRequest struct {
	Email    string        `json:"email"`
	Amount   int64         `json:"amount"` // minor currency unit
	Currency string        `json:"currency"`
	Channels []string      `json:"channels"`
	Metadata OrderMetadata `json:"metadata"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type InitializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

type Customer struct {
	Email string `json:"email"`
}

type VerifyData struct {
	Status    string        `json:"status"`
	Reference string        `json:"reference"`
	Amount    int64         `json:"amount"` // minor currency unit
	Customer  Customer      `json:"customer"`
	Metadata  OrderMetadata `json:"metadata"`
}

type VerifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    VerifyData `json:"data"`
}

// StatusSuccess is the only provider status that counts as a successful
// payment.
const StatusSuccess = "success"

func (d VerifyData) Succeeded() bool {
	return d.Status == StatusSuccess
}

// MinorUnits converts a major-unit amount to the provider's minor currency
// unit (pesewas).
func MinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

// Initialize creates a transaction and returns the provider's redirect
// payload. The amount is in major units and converted here.
func (c *Client) Initialize(ctx context.Context, email string, amount float64, metadata OrderMetadata) (*InitializeResponse, error) {
	body := initializeRequest{
		Email:    email,
		Amount:   MinorUnits(amount),
		Currency: Currency,
		Channels: Channels,
		Metadata: metadata,
	}

	var resp InitializeResponse
	if err := c.post(ctx, "/transaction/initialize", body, &resp); err != nil {
		return nil, err
	}

	if !resp.Status {
		return nil, fmt.Errorf("provider rejected initialization: %s", resp.Message)
	}

	return &resp, nil
}

// Verify re-queries the provider for the final status of a transaction.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response failed: %w", err)
	}

	return nil
}
