// Package services defines the bot's business flows: ingesting group
// messages, opening lead requests, the payment-claim state machine and the
// maintenance sweep. This file centralizes the service-level error values
// so that handlers can map them to responses consistently.
//
// Expected-input errors (unknown request, unknown claim, conflict) are
// returned as values; translating them into user-facing apologies or HTTP
// status codes happens at the handler layer.
package services

import "errors"

var (
	// ErrEmptyMessage is returned when an inbound message has no text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrChatNotAllowed is returned for messages from chats outside the
	// configured allow-list.
	ErrChatNotAllowed = errors.New("chat not allowed")

	// ErrLeadRequestNotFound indicates an unknown or invalid lead request id,
	// usually from a stale deep link.
	ErrLeadRequestNotFound = errors.New("lead request not found")

	// ErrClaimNotFound indicates an unknown payment claim or provider link.
	ErrClaimNotFound = errors.New("payment claim not found")

	// ErrClaimConflict is returned when a claim is not in a state that
	// allows the requested transition, e.g. deciding an already decided
	// claim.
	ErrClaimConflict = errors.New("payment claim already settled")

	// ErrUnknownTier is returned for a tier code missing from the tier table.
	ErrUnknownTier = errors.New("unknown tier")

	// ErrForbidden is returned when the caller may not act on the claim,
	// or is not the configured admin.
	ErrForbidden = errors.New("forbidden")

	// ErrPaymentUnavailable is returned when the payment provider could not
	// create a payment link in time.
	ErrPaymentUnavailable = errors.New("payment system unavailable")

	// ErrBadCallback is returned for callback data the bot did not issue.
	ErrBadCallback = errors.New("malformed callback data")

	// ErrBadWebhook is returned for a signed webhook body that does not
	// parse as a provider event.
	ErrBadWebhook = errors.New("malformed webhook payload")

	// ErrInvalidStatus is returned when filtering claims by an unknown status.
	ErrInvalidStatus = errors.New("invalid claim status")
)
