// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards provider webhooks. VerifiedBody reads the raw body once,
// checks its signature before anything parses it, and stashes the bytes for
// the handler. EventDedup validates the provider's event id header and marks
// redeliveries of already-processed events, so the handler can acknowledge
// them without work and the rate limiter lets them through.
package middleware

import (
	"context"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-society-bot/internal/observability"
)

// Razorpay webhook headers.
const (
	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderRazorpayEventID   = "X-Razorpay-Event-Id"
)

const (
	ctxKeyRawBody    = "webhook.body"
	ctxKeyEventID    = "webhook.event_id"
	ctxKeyReplay     = "webhook.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// DefaultWebhookBodyLimit caps webhook bodies read by VerifiedBody.
const DefaultWebhookBodyLimit int64 = 1 << 20

var eventIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]{1,128}$`)

// SignatureVerifier reports whether signature authenticates body.
type SignatureVerifier func(body []byte, signature string) bool

// VerifiedBody reads at most limit bytes of the request body, verifies the
// signature carried in header and aborts with 401 invalid_signature when it
// does not match. The verified bytes are available through RawBody.
func VerifiedBody(header string, limit int64, verify SignatureVerifier) gin.HandlerFunc {
	if limit <= 0 {
		limit = DefaultWebhookBodyLimit
	}
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
		if err != nil {
			abortJSON(c, http.StatusBadRequest, "bad_request", "unreadable body")
			return
		}
		if int64(len(body)) > limit {
			abortJSON(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		if !verify(body, c.GetHeader(header)) {
			observability.WebhooksRejected.WithLabelValues("signature").Inc()
			LoggerFrom(c).Warn().
				Bool("security", true).
				Str("path", c.Request.URL.Path).
				Str("remote_ip", c.ClientIP()).
				Msg("webhook signature rejected")
			abortJSON(c, http.StatusUnauthorized, "invalid_signature", "invalid webhook signature")
			return
		}
		c.Set(ctxKeyRawBody, body)
		c.Next()
	}
}

// RawBody returns the body stashed by VerifiedBody.
func RawBody(c *gin.Context) ([]byte, bool) {
	v, ok := c.Get(ctxKeyRawBody)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// EventLookup reports whether eventID was already processed. Errors never
// block the request; the handler's own idempotency still applies.
type EventLookup func(ctx context.Context, eventID string) (bool, error)

// EventDedup validates the event id in header when present, stashes it,
// and marks the request as a replay when lookup has seen it. A malformed
// id is rejected with 400 bad_event_id.
func EventDedup(header string, lookup EventLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			c.Next()
			return
		}
		if !eventIDPattern.MatchString(id) {
			observability.WebhooksRejected.WithLabelValues("event_id").Inc()
			abortJSON(c, http.StatusBadRequest, "bad_event_id", "invalid event id")
			return
		}
		c.Set(ctxKeyEventID, id)

		if lookup != nil {
			seen, err := lookup(c.Request.Context(), id)
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("event_id", id).Msg("event lookup failed")
			case seen:
				c.Set(ctxKeyReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// GetEventID returns the validated event id stashed by EventDedup.
func GetEventID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyEventID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether EventDedup recognised an already-processed event.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": GetRequestID(c),
		"code":       code,
		"message":    msg,
	})
}
