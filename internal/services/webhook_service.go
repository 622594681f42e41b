// Package services – WebhookService
//
// This file turns verified payment-provider webhooks into claim
// confirmations. Signature checks happen before this layer; here the event
// id is deduplicated so provider redeliveries are acknowledged without
// repeating side effects.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/payments"
	"github.com/tbourn/go-society-bot/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProviderRazorpay keys webhook-event records.
const ProviderRazorpay = "razorpay"

// Webhook outcomes.
const (
	WebhookProcessed   = "processed"
	WebhookDuplicate   = "duplicate"
	WebhookIgnored     = "ignored"
	WebhookUnknownLink = "unknown_link"
)

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	Outcome string `json:"outcome"`
	ClaimID uint64 `json:"claim_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

// WebhookService handles provider webhooks.
type WebhookService struct {
	DB           *gorm.DB
	Entitlements *EntitlementService

	// TTL is how long a processed event id is remembered.
	TTL time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Seen reports whether eventID was already processed.
func (s *WebhookService) Seen(ctx context.Context, eventID string) (bool, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	_, err := repo.GetWebhookEvent(ctx, s.DB, ProviderRazorpay, eventID, now)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// HandleRazorpay processes a verified Razorpay webhook body. Errors are
// returned only when the provider should redeliver.
func (s *WebhookService) HandleRazorpay(ctx context.Context, eventID string, body []byte) (WebhookResult, error) {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "HandleRazorpay",
		trace.WithAttributes(attribute.String("webhook.event_id", eventID)),
	)
	defer span.End()

	if eventID != "" {
		seen, err := s.Seen(ctx, eventID)
		if err != nil {
			return WebhookResult{}, err
		}
		if seen {
			return WebhookResult{Outcome: WebhookDuplicate}, nil
		}
	}

	ev, err := payments.ParseWebhook(body)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event_id", eventID).Msg("unparseable webhook")
		return WebhookResult{}, ErrBadWebhook
	}
	span.SetAttributes(attribute.String("webhook.event", ev.Event))

	if ev.Event != payments.EventPaymentLinkPaid {
		s.remember(ctx, eventID, ev.Event, nil)
		return WebhookResult{Outcome: WebhookIgnored}, nil
	}

	c, applied, err := s.Entitlements.RecordExternalConfirmation(ctx, ev.LinkID, ev.PaymentID)
	if errors.Is(err, ErrClaimNotFound) {
		s.remember(ctx, eventID, ev.Event, nil)
		return WebhookResult{Outcome: WebhookUnknownLink}, nil
	}
	if err != nil {
		return WebhookResult{}, err
	}
	s.remember(ctx, eventID, ev.Event, &c.ID)

	out := WebhookResult{Outcome: WebhookProcessed, ClaimID: c.ID, Status: c.Status}
	if !applied {
		out.Outcome = WebhookDuplicate
	}
	return out, nil
}

// remember records a processed event id. Losing the record only costs a
// second, idempotent pass over the same event.
func (s *WebhookService) remember(ctx context.Context, eventID, eventType string, claimID *uint64) {
	if eventID == "" {
		return
	}
	_, err := repo.RecordWebhookEvent(ctx, s.DB, ProviderRazorpay, eventID, eventType, claimID, s.TTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Ctx(ctx).Warn().Err(err).Str("event_id", eventID).Msg("webhook event not recorded")
	}
}
