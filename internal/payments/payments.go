// Package payments holds the payment-provider contract, the Razorpay
// payment-link client and webhook verification.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LinkRequest describes a hosted payment page to create.
type LinkRequest struct {
	Amount      int64 // rupees
	Description string
	ReferenceID string
	Notes       map[string]string
}

// Link is a created payment page.
type Link struct {
	ID  string
	URL string
}

// Provider creates hosted payment pages.
type Provider interface {
	CreateLink(ctx context.Context, req LinkRequest) (Link, error)
}

// ErrInvalidSignature is returned when a webhook signature does not match.
var ErrInvalidSignature = errors.New("payments: invalid webhook signature")

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a hex HMAC-SHA256 signature over the raw body in
// constant time. An empty secret never verifies.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Webhook events the bot acts on.
const EventPaymentLinkPaid = "payment_link.paid"

// WebhookEvent is the part of a provider notification the bot uses.
type WebhookEvent struct {
	Event       string
	LinkID      string
	ReferenceID string
	PaymentID   string
}

type webhookBody struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID          string `json:"id"`
				ReferenceID string `json:"reference_id"`
			} `json:"entity"`
		} `json:"payment_link"`
		Payment struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook decodes a verified webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
	var b webhookBody
	if err := json.Unmarshal(body, &b); err != nil {
		return WebhookEvent{}, fmt.Errorf("payments: decode webhook: %w", err)
	}
	if b.Event == "" {
		return WebhookEvent{}, errors.New("payments: webhook without event")
	}
	ev := WebhookEvent{
		Event:       b.Event,
		LinkID:      b.Payload.PaymentLink.Entity.ID,
		ReferenceID: b.Payload.PaymentLink.Entity.ReferenceID,
		PaymentID:   b.Payload.Payment.Entity.ID,
	}
	if ev.Event == EventPaymentLinkPaid && ev.LinkID == "" {
		return WebhookEvent{}, errors.New("payments: paid event without payment link id")
	}
	return ev, nil
}
