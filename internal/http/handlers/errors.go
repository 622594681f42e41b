// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; the gateway and operator tools
// branch on them. Every error response carries an HTTP status and one code.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "payment claim already settled"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeBadCallback        = "bad_callback"
	ErrCodeBadWebhook         = "bad_webhook"
	ErrCodeUnknownTier        = "unknown_tier"
	ErrCodePaymentUnavailable = "payment_unavailable"
	ErrCodeIngestFailed       = "ingest_failed"
	ErrCodeWebhookFailed      = "webhook_failed"
	ErrCodeSweepFailed        = "sweep_failed"
	ErrCodeListFailed         = "list_failed"
)
