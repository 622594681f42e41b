// Webhook HTTP handlers.
//
//   - POST /webhooks/razorpay  (payment_link.paid confirmations)
//
// The router mounts this behind middleware.EventDedup and
// middleware.VerifiedBody, so by the time the handler runs the signature
// has been checked and the raw body is in the context. A 2xx tells the
// provider to stop redelivering; a 5xx asks it to try again.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-society-bot/internal/http/middleware"
	"github.com/tbourn/go-society-bot/internal/services"
)

// RazorpayWebhook godoc
// @ID          razorpayWebhook
// @Summary     Razorpay webhook
// @Description Verifies X-Razorpay-Signature (HMAC-SHA256 of the raw body) and applies payment_link.paid to the claim behind the link.
// @Description Redelivered events are acknowledged without side effects.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       X-Razorpay-Signature  header  string  true   "Hex HMAC-SHA256 of the raw body"
// @Param       X-Razorpay-Event-Id   header  string  false  "Provider event id used for deduplication"
// @Param       body                  body    object  true   "Razorpay event"
//
// @Success     200  {object}  services.WebhookResult
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed event"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid signature"
// @Failure     500  {object}  handlers.ErrorResponse  "Processing failed; provider should redeliver"
// @Router      /webhooks/razorpay [post]
func (h *Handlers) RazorpayWebhook(c *gin.Context) {
	if middleware.IsReplay(c) {
		ok(c, http.StatusOK, services.WebhookResult{Outcome: services.WebhookDuplicate})
		return
	}
	body, found := middleware.RawBody(c)
	if !found {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "webhook body not verified")
		return
	}
	eventID, _ := middleware.GetEventID(c)

	res, err := h.webhooks.HandleRazorpay(c.Request.Context(), eventID, body)
	switch {
	case errors.Is(err, services.ErrBadWebhook):
		fail(c, http.StatusBadRequest, ErrCodeBadWebhook, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeWebhookFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}
