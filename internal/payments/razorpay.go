package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog/log"
)

// DefaultRazorpayBaseURL is the public API root.
const DefaultRazorpayBaseURL = "https://api.razorpay.com"

// Razorpay creates payment links through the Razorpay REST API.
type Razorpay struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	attempts  uint
	delay     time.Duration
}

// RazorpayOption configures a Razorpay client.
type RazorpayOption func(*Razorpay)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RazorpayOption {
	return func(r *Razorpay) { r.client = c }
}

// WithRetry sets the attempt count and the initial backoff.
func WithRetry(attempts uint, delay time.Duration) RazorpayOption {
	return func(r *Razorpay) {
		r.attempts = attempts
		r.delay = delay
	}
}

// NewRazorpay returns a client for baseURL (the public API when empty).
func NewRazorpay(baseURL, keyID, keySecret string, opts ...RazorpayOption) *Razorpay {
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	r := &Razorpay{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 10 * time.Second},
		attempts:  3,
		delay:     300 * time.Millisecond,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type createLinkBody struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	ReferenceID string            `json:"reference_id,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type linkResponse struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
}

// statusError is a non-2xx API reply.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("razorpay: HTTP %d: %s", e.code, e.body)
}

// permanent marks a failure that retrying cannot fix.
type permanent struct{ error }

func (p permanent) Unwrap() error { return p.error }

// CreateLink creates a payment link for req.Amount rupees. Server errors
// and transport failures are retried; client errors are not.
func (r *Razorpay) CreateLink(ctx context.Context, req LinkRequest) (Link, error) {
	payload, err := json.Marshal(createLinkBody{
		Amount:      req.Amount * 100,
		Currency:    "INR",
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
	})
	if err != nil {
		return Link{}, fmt.Errorf("razorpay: encode: %w", err)
	}

	var out linkResponse
	err = retry.Do(
		func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/payment_links", bytes.NewReader(payload))
			if err != nil {
				return permanent{fmt.Errorf("create request: %w", err)}
			}
			httpReq.SetBasicAuth(r.keyID, r.keySecret)
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := r.client.Do(httpReq)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return permanent{fmt.Errorf("razorpay: decode: %w", err)}
			}
			if out.ID == "" || out.ShortURL == "" {
				return permanent{errors.New("razorpay: link without id or url")}
			}
			return nil
		},
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.MaxDelay(3*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Str("reference_id", req.ReferenceID).Msg("payment link creation failed; retrying")
		}),
		retry.RetryIf(func(err error) bool {
			var p permanent
			if errors.As(err, &p) {
				return false
			}
			var se *statusError
			if errors.As(err, &se) {
				return se.code == http.StatusTooManyRequests || se.code >= 500
			}
			return true
		}),
	)
	if err != nil {
		return Link{}, fmt.Errorf("razorpay: create link: %w", err)
	}
	return Link{ID: out.ID, URL: out.ShortURL}, nil
}
