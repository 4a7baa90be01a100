/**
 * @description
 * This package provides a client for the hosted payment provider. It
 * encapsulates the logic for making authenticated HTTP requests to the
 * provider's checkout endpoints, constructing request bodies, and parsing
 * responses, plus the signature verification for inbound webhook events.
 *
 * @notes
 * - Checkout metadata carries the project id, investor id and amount so that
 *   the later confirmation event is self-describing; the webhook handler
 *   never needs a side lookup to attribute money.
 */
package paymentgateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EventCheckoutCompleted is the provider event type that confirms money moved.
const EventCheckoutCompleted = "checkout.completed"

// SignatureHeader is the header the provider signs webhook deliveries with.
const SignatureHeader = "X-Gateway-Signature"

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedEvent   = errors.New("webhook payload is not a valid event")
)

// Client is a client for the payment provider API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new payment provider client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckoutMetadata is attached to a checkout session and echoed back on the
// completion event.
type CheckoutMetadata struct {
	ProjectID  string `json:"project_id"`
	InvestorID string `json:"investor_id"`
	Amount     int64  `json:"amount"` // in cents
}

// CheckoutParams describes the checkout session to create.
type CheckoutParams struct {
	Amount     int64            `json:"amount"` // in cents
	Currency   string           `json:"currency"`
	SuccessURL string           `json:"success_url"`
	CancelURL  string           `json:"cancel_url"`
	Metadata   CheckoutMetadata `json:"metadata"`
}

// CheckoutSession is the provider's handle for an in-progress payment.
type CheckoutSession struct {
	CheckoutID  string `json:"checkout_id"`
	RedirectURL string `json:"redirect_url"`
}

// Event is a provider webhook event. TransactionID is the provider's unique
// identifier for the underlying payment and doubles as the idempotency key
// for the recorder.
type Event struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	TransactionID string           `json:"transaction_id"`
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	Metadata      CheckoutMetadata `json:"metadata"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ErrorResponse represents an error returned by the provider API.
type ErrorResponse struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Status string `json:"status"`
	} `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("payment gateway error: %s - %s", e.Errors[0].Title, e.Errors[0].Detail)
	}
	return "unknown payment gateway error"
}

// CreateCheckout creates a checkout session for an investment and returns the
// handle the investor is redirected to.
func (c *Client) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	return &session, nil
}

// ListCompletedCheckouts pages through the provider's durable event log and
// returns completed checkout events created at or after `since`. The
// reconciliation job replays any of these that never reached the ledger.
func (c *Client) ListCompletedCheckouts(ctx context.Context, since time.Time) ([]Event, error) {
	endpoint := fmt.Sprintf("%s/v1/events?type=%s&since=%s",
		c.BaseURL, url.QueryEscape(EventCheckoutCompleted), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event log request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}

	var payload struct {
		Data []Event `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode event log: %w", err)
	}
	return payload.Data, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		return &apiErr
	}
	return fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// VerifyAndParseEvent checks the HMAC-SHA256 signature of a raw webhook body
// against the shared secret and, only if it verifies, parses the event.
// Events with an unverifiable signature never reach the caller's business
// logic.
func VerifyAndParseEvent(body []byte, signatureHeader, secret string) (*Event, error) {
	if !validSignature(body, signatureHeader, secret) {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	return &event, nil
}

// SignBody computes the signature the provider would attach to the given
// body. Exposed for tests and for local webhook replay tooling.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(body []byte, signatureHeader, secret string) bool {
	header := strings.TrimSpace(signatureHeader)
	if header == "" || secret == "" {
		return false
	}
	// Some providers prefix the hex digest with the algorithm name.
	header = strings.TrimPrefix(header, "sha256=")

	expected, err := hex.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(expected, mac.Sum(nil))
}
