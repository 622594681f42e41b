// Update HTTP handlers.
//
// The chat gateway forwards platform updates here as JSON:
//   - POST /updates/messages     (group text message, runs the ingest pipeline)
//   - POST /updates/start        (private /start with an optional deep-link payload)
//   - POST /updates/callbacks    (inline button presses)
//   - POST /updates/commands     (slash commands)
//   - POST /updates/memberships  (bot added to or removed from a chat)
//
// Replies are not returned in the HTTP response; services publish them to
// the outbound transport. Responses only report what happened.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-society-bot/internal/services"
)

// Chat types the gateway reports.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

//
// DTOs
//

// MessageUpdate is a text message seen in a chat.
type MessageUpdate struct {
	ChatID    int64  `json:"chat_id"    binding:"required" example:"-1001234567890"`
	ChatType  string `json:"chat_type"  binding:"required" example:"supergroup"`
	MessageID int64  `json:"message_id" example:"4711"`
	UserID    int64  `json:"user_id"    binding:"required" example:"55"`
	Username  string `json:"username"   example:"sunita_k"`
	FirstName string `json:"first_name" example:"Sunita"`
	Text      string `json:"text"       example:"Need a cook for morning and evening, Tower B"`
}

// IngestResponse reports the ingest outcome.
type IngestResponse struct {
	Outcome       string `json:"outcome" example:"matched" enums:"ignored,stored,matched"`
	Reason        string `json:"reason,omitempty" example:"chat_not_allowed"`
	ListingID     uint64 `json:"listing_id,omitempty" example:"12"`
	LeadRequestID uint64 `json:"lead_request_id,omitempty" example:"34"`
}

// StartUpdate is a private /start, optionally carrying a deep-link payload.
type StartUpdate struct {
	UserID  int64  `json:"user_id" binding:"required" example:"55"`
	ChatID  int64  `json:"chat_id" binding:"required" example:"55"`
	Payload string `json:"payload" example:"leads_34"`
}

// CallbackUpdate is an inline button press.
type CallbackUpdate struct {
	UserID    int64  `json:"user_id"    binding:"required" example:"55"`
	ChatID    int64  `json:"chat_id"    binding:"required" example:"55"`
	MessageID int64  `json:"message_id" example:"4712"`
	Username  string `json:"username"   example:"sunita_k"`
	FirstName string `json:"first_name" example:"Sunita"`
	Data      string `json:"data"       binding:"required" example:"buy_t1_34"`
}

// CommandUpdate is a slash command.
type CommandUpdate struct {
	ChatID    int64  `json:"chat_id"    binding:"required" example:"-1001234567890"`
	MessageID int64  `json:"message_id" example:"4713"`
	UserID    int64  `json:"user_id"    example:"55"`
	Command   string `json:"command"    binding:"required" example:"/stats"`
}

// CommandResponse reports whether the command was recognised.
type CommandResponse struct {
	Handled bool `json:"handled"`
}

// MembershipUpdate reports the bot's membership change in a chat.
type MembershipUpdate struct {
	ChatID int64 `json:"chat_id" binding:"required" example:"-1001234567890"`
	Joined bool  `json:"joined" example:"true"`
}

// MembershipResponse reports whether the bot decided to leave.
type MembershipResponse struct {
	Left bool `json:"left"`
}

func isGroup(chatType string) bool {
	switch strings.ToLower(chatType) {
	case ChatTypeGroup, ChatTypeSupergroup:
		return true
	}
	return false
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessageUpdate
// @Summary     Ingest a group message
// @Description Classifies a group message, stores it as a listing and, when opposite-type leads exist, replies in the group with a hook.
// @Description Messages from private chats, empty messages and chats outside the allow-list are acknowledged as ignored.
// @Tags        Updates
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MessageUpdate  true  "Message update"
//
// @Success     202  {object}  handlers.IngestResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /updates/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req MessageUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id, chat_type and user_id are required")
		return
	}
	if !isGroup(req.ChatType) {
		ok(c, http.StatusAccepted, IngestResponse{Outcome: services.OutcomeIgnored, Reason: "not_a_group"})
		return
	}

	res, err := h.listings.HandleGroupMessage(c.Request.Context(), services.IncomingMessage{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		UserID:    req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
		Text:      req.Text,
	})
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		ok(c, http.StatusAccepted, IngestResponse{Outcome: services.OutcomeIgnored, Reason: "empty"})
		return
	case errors.Is(err, services.ErrChatNotAllowed):
		ok(c, http.StatusAccepted, IngestResponse{Outcome: services.OutcomeIgnored, Reason: "chat_not_allowed"})
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		return
	}
	ok(c, http.StatusAccepted, IngestResponse{
		Outcome:       res.Outcome,
		ListingID:     res.ListingID,
		LeadRequestID: res.LeadRequestID,
	})
}

// PostStart godoc
// @ID          postStartUpdate
// @Summary     Handle a private /start
// @Description A "leads_<id>" payload sends the free preview for that lead request and the upsell; anything else sends the help text.
// @Tags        Updates
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.StartUpdate  true  "Start update"
//
// @Success     200  {object}  services.StartResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /updates/start [post]
func (h *Handlers) PostStart(c *gin.Context) {
	var req StartUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and chat_id are required")
		return
	}
	res, err := h.leads.HandleStart(c.Request.Context(), req.UserID, req.ChatID, req.Payload)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// PostCallback godoc
// @ID          postCallbackUpdate
// @Summary     Handle an inline button press
// @Description buy_<tier>_<request> opens a payment claim, paid_<claim> submits a manual claim for review, approve_<claim> and reject_<claim> are admin decisions.
// @Tags        Updates
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CallbackUpdate  true  "Callback update"
//
// @Success     200  {object}  services.CallbackResult
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed callback or unknown tier"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the claim owner or not the admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown claim or lead request"
// @Failure     409  {object}  handlers.ErrorResponse  "Claim already settled"
// @Failure     503  {object}  handlers.ErrorResponse  "Payment provider unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /updates/callbacks [post]
func (h *Handlers) PostCallback(c *gin.Context) {
	var req CallbackUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id, chat_id and data are required")
		return
	}
	res, err := h.callbacks.Handle(c.Request.Context(), services.CallbackInput{
		UserID:    req.UserID,
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Username:  req.Username,
		FirstName: req.FirstName,
		Data:      req.Data,
	})
	if err != nil {
		failCallback(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func failCallback(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBadCallback):
		fail(c, http.StatusBadRequest, ErrCodeBadCallback, err.Error())
	case errors.Is(err, services.ErrUnknownTier):
		fail(c, http.StatusBadRequest, ErrCodeUnknownTier, err.Error())
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrClaimNotFound), errors.Is(err, services.ErrLeadRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrClaimConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrPaymentUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodePaymentUnavailable, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// PostCommand godoc
// @ID          postCommandUpdate
// @Summary     Handle a slash command
// @Description Answers /stats, /help and /start in the chat. Unknown commands are acknowledged with handled=false.
// @Tags        Updates
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CommandUpdate  true  "Command update"
//
// @Success     200  {object}  handlers.CommandResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /updates/commands [post]
func (h *Handlers) PostCommand(c *gin.Context) {
	var req CommandUpdate
	if err := c.ShouldBindJSON(&req); err != nil || !strings.HasPrefix(strings.TrimSpace(req.Command), "/") {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id and a /command are required")
		return
	}
	handled, err := h.commands.Handle(c.Request.Context(), req.ChatID, req.MessageID, req.Command)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CommandResponse{Handled: handled})
}

// PostMembership godoc
// @ID          postMembershipUpdate
// @Summary     Handle a membership change
// @Description When the bot is added to a chat outside the allow-list it publishes a leave action.
// @Tags        Updates
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MembershipUpdate  true  "Membership update"
//
// @Success     200  {object}  handlers.MembershipResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /updates/memberships [post]
func (h *Handlers) PostMembership(c *gin.Context) {
	var req MembershipUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id is required")
		return
	}
	left, err := h.listings.HandleMembership(c.Request.Context(), req.ChatID, req.Joined)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, MembershipResponse{Left: left})
}
