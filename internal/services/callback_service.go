// Package services – CallbackService
//
// This file routes inline-button callbacks to the entitlement flow. The
// payloads are the ones the formatter issues: buy_<tier>_<request>,
// paid_<claim>, approve_<claim> and reject_<claim>.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// Callback kinds.
const (
	CallbackBuy     = "buy"
	CallbackPaid    = "paid"
	CallbackApprove = "approve"
	CallbackReject  = "reject"
)

// Callback is a parsed button payload. Tier is set for buy only; ID is the
// lead request for buy and the claim otherwise.
type Callback struct {
	Kind string
	Tier string
	ID   uint64
}

// ParseCallback decodes a button payload.
func ParseCallback(data string) (Callback, error) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(data), "_")
	if !ok {
		return Callback{}, ErrBadCallback
	}
	cb := Callback{Kind: kind}
	switch kind {
	case CallbackBuy:
		tier, id, ok := strings.Cut(rest, "_")
		if !ok || tier == "" {
			return Callback{}, ErrBadCallback
		}
		cb.Tier, rest = tier, id
	case CallbackPaid, CallbackApprove, CallbackReject:
	default:
		return Callback{}, ErrBadCallback
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return Callback{}, ErrBadCallback
	}
	cb.ID = id
	return cb, nil
}

// CallbackInput is a button press forwarded by the gateway.
type CallbackInput struct {
	UserID    int64
	ChatID    int64
	MessageID int64
	Username  string
	FirstName string
	Data      string
}

// CallbackResult reports the claim a callback acted on.
type CallbackResult struct {
	Action  string `json:"action"`
	ClaimID uint64 `json:"claim_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Applied bool   `json:"applied"`
}

// CallbackService dispatches button presses.
type CallbackService struct {
	Entitlements *EntitlementService
	Formatter    *format.Formatter
	Sender       transport.Sender
}

// Handle parses in.Data and runs the matching transition.
func (s *CallbackService) Handle(ctx context.Context, in CallbackInput) (CallbackResult, error) {
	cb, err := ParseCallback(in.Data)
	if err != nil {
		return CallbackResult{}, err
	}
	out := CallbackResult{Action: cb.Kind}

	var c *domain.PaymentClaim
	switch cb.Kind {
	case CallbackBuy:
		c, err = s.Entitlements.Initiate(ctx, in.UserID, in.ChatID, cb.ID, cb.Tier)
		out.Applied = err == nil
	case CallbackPaid:
		c, out.Applied, err = s.Entitlements.SubmitProof(ctx, in.UserID, in.ChatID, in.MessageID, cb.ID, displayName(in.Username, in.FirstName))
	case CallbackApprove, CallbackReject:
		c, err = s.Entitlements.AdminDecide(ctx, in.UserID, cb.ID, cb.Kind == CallbackApprove)
		out.Applied = err == nil
		if c != nil && (err == nil || errors.Is(err, ErrClaimConflict)) && in.MessageID != 0 {
			edit := transport.Edit(in.ChatID, in.MessageID, s.Formatter.AdminDecided(*c, out.Applied))
			if serr := s.Sender.Send(ctx, edit); serr != nil {
				s.Entitlements.send(ctx, transport.Send(in.ChatID, edit.Text))
			}
		}
	}
	if c != nil {
		out.ClaimID, out.Status = c.ID, c.Status
	}
	return out, err
}

func displayName(username, firstName string) string {
	if u := strings.TrimPrefix(username, "@"); u != "" {
		return "@" + u
	}
	return firstName
}
