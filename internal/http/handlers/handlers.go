// Package handlers wires HTTP endpoints to the bot's services.
//
// Handlers are transport-thin: they bind and validate JSON, call a service
// and map its result or sentinel error onto a status code. The service
// contracts below are what the handlers consume; the concrete services live
// in internal/services.
package handlers

import (
	"context"

	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/services"
)

//
// Service contracts (context-aware)
//

// ListingService ingests group messages and reacts to chat membership.
type ListingService interface {
	HandleGroupMessage(ctx context.Context, m services.IncomingMessage) (services.IngestResult, error)
	HandleMembership(ctx context.Context, chatID int64, joined bool) (bool, error)
}

// LeadService answers deep-link /start payloads in private chats.
type LeadService interface {
	HandleStart(ctx context.Context, userID, chatID int64, payload string) (services.StartResult, error)
}

// CallbackService runs the transition behind an inline button.
type CallbackService interface {
	Handle(ctx context.Context, in services.CallbackInput) (services.CallbackResult, error)
}

// CommandService answers slash commands and exposes the category counts.
type CommandService interface {
	Handle(ctx context.Context, chatID, messageID int64, command string) (bool, error)
	Counts(ctx context.Context) ([]format.CategoryCount, int64, error)
}

// WebhookService processes verified provider webhooks.
type WebhookService interface {
	HandleRazorpay(ctx context.Context, eventID string, body []byte) (services.WebhookResult, error)
}

// MaintenanceService removes expired rows.
type MaintenanceService interface {
	Sweep(ctx context.Context) (services.SweepResult, error)
}

// ClaimService lists payment claims for operators.
type ClaimService interface {
	ClaimsPage(ctx context.Context, status string, page, pageSize int) ([]domain.PaymentClaim, int64, error)
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	Listings    ListingService
	Leads       LeadService
	Callbacks   CallbackService
	Commands    CommandService
	Webhooks    WebhookService
	Maintenance MaintenanceService
	Claims      ClaimService
}

// Handlers groups the gateway, webhook and admin endpoints.
type Handlers struct {
	listings    ListingService
	leads       LeadService
	callbacks   CallbackService
	commands    CommandService
	webhooks    WebhookService
	maintenance MaintenanceService
	claims      ClaimService
}

// New constructs Handlers bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		listings:    s.Listings,
		leads:       s.Leads,
		callbacks:   s.Callbacks,
		commands:    s.Commands,
		webhooks:    s.Webhooks,
		maintenance: s.Maintenance,
		claims:      s.Claims,
	}
}
