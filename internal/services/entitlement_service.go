// Package services – EntitlementService
//
// This file implements the payment-claim state machine that gates the paid
// reveal:
//
//	created ──submit proof──▶ pending ──admin──▶ approved | rejected
//	created ──────────webhook─────────▶ paid
//
// approved, paid and rejected are terminal. Every transition is a single
// compare-and-set in the store, so a redelivered webhook racing an admin
// decision applies at most one terminal status; the loser observes the
// settled claim. Delivery runs after the transition and never rolls it back.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/observability"
	"github.com/tbourn/go-society-bot/internal/payments"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"
	"github.com/tbourn/go-society-bot/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EntitlementService owns payment claims and the paid reveal.
type EntitlementService struct {
	DB        *gorm.DB
	Leads     *LeadService
	Formatter *format.Formatter
	Sender    transport.Sender

	// Channel is domain.ChannelManual or domain.ChannelRazorpay.
	Channel string
	// Provider creates payment links on the razorpay channel.
	Provider        payments.Provider
	ProviderTimeout time.Duration

	Tiers       config.LeadsConfig
	AdminUserID int64

	UPIVPA   string
	UPIPayee string
}

func (s *EntitlementService) tracer() trace.Tracer {
	return otel.Tracer("services/EntitlementService")
}

// Claim returns a claim by id, or ErrClaimNotFound.
func (s *EntitlementService) Claim(ctx context.Context, id uint64) (*domain.PaymentClaim, error) {
	c, err := repo.GetClaim(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrClaimNotFound
	}
	return c, err
}

// Initiate opens a claim for tierCode against lead request requestID and
// sends the payment instructions to chatID. On the razorpay channel a
// provider failure leaves the claim in created and returns
// ErrPaymentUnavailable.
func (s *EntitlementService) Initiate(ctx context.Context, userID, chatID int64, requestID uint64, tierCode string) (*domain.PaymentClaim, error) {
	ctx, span := s.tracer().Start(ctx, "Initiate",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("request.id", int64(requestID)),
			attribute.String("tier", tierCode),
		),
	)
	defer span.End()

	tier, ok := s.Tiers.Tier(tierCode)
	if !ok {
		return nil, ErrUnknownTier
	}
	req, err := s.Leads.Get(ctx, requestID)
	if errors.Is(err, ErrLeadRequestNotFound) {
		s.send(ctx, transport.Send(chatID, s.Formatter.LinkExpired()))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	c := &domain.PaymentClaim{
		UserID:    userID,
		RequestID: req.ID,
		Amount:    tier.Price,
		Tier:      tier.Code,
		Channel:   s.Channel,
		Status:    domain.ClaimCreated,
	}
	if err := repo.CreateClaim(ctx, s.DB, c); err != nil {
		return nil, err
	}
	observability.ClaimTransitions.WithLabelValues(domain.ClaimCreated).Inc()
	logger := log.Ctx(ctx).With().Uint64("claim_id", c.ID).Uint64("request_id", req.ID).Str("tier", tier.Code).Logger()

	if s.Channel != domain.ChannelRazorpay {
		link := format.UPILink(s.UPIVPA, s.UPIPayee, tier.Price, fmt.Sprintf("claim %d", c.ID))
		r := s.Formatter.ManualPayment(tier, c.ID, s.UPIVPA, link)
		s.send(ctx, transport.Send(chatID, r.Text, r.Buttons...))
		logger.Info().Msg("manual claim created")
		return c, nil
	}

	if s.Provider == nil {
		logger.Error().Msg("razorpay channel without a payment provider")
		s.send(ctx, transport.Send(chatID, s.Formatter.PaymentUnavailable()))
		return c, ErrPaymentUnavailable
	}
	linkCtx := ctx
	if s.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		linkCtx, cancel = context.WithTimeout(ctx, s.ProviderTimeout)
		defer cancel()
	}
	link, err := s.Provider.CreateLink(linkCtx, payments.LinkRequest{
		Amount:      tier.Price,
		Description: fmt.Sprintf("%d contacts for %s", tier.Leads, format.Label(format.SearchOf(*req))),
		ReferenceID: "claim-" + strconv.FormatUint(c.ID, 10),
		Notes: map[string]string{
			"claim_id":   strconv.FormatUint(c.ID, 10),
			"request_id": strconv.FormatUint(req.ID, 10),
			"tier":       tier.Code,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("payment link creation failed")
		s.send(ctx, transport.Send(chatID, s.Formatter.PaymentUnavailable()))
		return c, ErrPaymentUnavailable
	}
	if err := repo.AttachProviderLink(ctx, s.DB, c.ID, link.ID, link.URL); err != nil {
		return c, err
	}
	c.ProviderLinkID, c.ProviderURL = &link.ID, &link.URL

	r := s.Formatter.PaymentLink(tier, link.URL)
	s.send(ctx, transport.Send(chatID, r.Text, r.Buttons...))
	logger.Info().Str("link_id", link.ID).Msg("payment link created")
	return c, nil
}

// SubmitProof moves a manual claim from created to pending and asks the
// admin to review it. Submitting twice is a no-op; applied reports whether
// this call moved the claim.
func (s *EntitlementService) SubmitProof(ctx context.Context, userID, chatID, messageID int64, claimID uint64, requester string) (c *domain.PaymentClaim, applied bool, err error) {
	ctx, span := s.tracer().Start(ctx, "SubmitProof",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("claim.id", int64(claimID)),
		),
	)
	defer span.End()

	c, err = s.Claim(ctx, claimID)
	if err != nil {
		return nil, false, err
	}
	if c.UserID != userID {
		return nil, false, ErrForbidden
	}
	if c.Channel != domain.ChannelManual {
		return c, false, ErrClaimConflict
	}

	err = repo.TransitionClaim(ctx, s.DB, c.ID, []string{domain.ClaimCreated}, domain.ClaimPending, repo.ClaimUpdate{})
	switch {
	case errors.Is(err, repo.ErrStaleTransition):
		if c, err = s.Claim(ctx, claimID); err != nil {
			return nil, false, err
		}
		if c.Status == domain.ClaimPending {
			return c, false, nil
		}
		return c, false, ErrClaimConflict
	case err != nil:
		return nil, false, err
	}
	observability.ClaimTransitions.WithLabelValues(domain.ClaimPending).Inc()
	c.Status = domain.ClaimPending

	ack := s.Formatter.ClaimSubmitted(c.ID)
	if messageID != 0 {
		s.send(ctx, transport.Edit(chatID, messageID, ack))
	} else {
		s.send(ctx, transport.Send(chatID, ack))
	}
	if s.AdminUserID != 0 {
		r := s.Formatter.AdminReview(*c, requester)
		s.send(ctx, transport.Send(s.AdminUserID, r.Text, r.Buttons...))
	} else {
		log.Ctx(ctx).Warn().Uint64("claim_id", c.ID).Msg("no admin configured to review claim")
	}
	return c, true, nil
}

// RecordExternalConfirmation marks the claim behind a provider link as
// paid and delivers it. A claim that is already terminal is returned
// unchanged with applied=false, so redelivered events never deliver twice.
func (s *EntitlementService) RecordExternalConfirmation(ctx context.Context, linkID, paymentID string) (c *domain.PaymentClaim, applied bool, err error) {
	ctx, span := s.tracer().Start(ctx, "RecordExternalConfirmation",
		trace.WithAttributes(attribute.String("provider.link_id", linkID)),
	)
	defer span.End()

	c, err = repo.GetClaimByProviderLink(ctx, s.DB, linkID)
	if errors.Is(err, repo.ErrNotFound) {
		log.Ctx(ctx).Debug().Str("link_id", linkID).Msg("confirmation for unknown payment link")
		return nil, false, ErrClaimNotFound
	}
	if err != nil {
		return nil, false, err
	}
	if c.Terminal() {
		return c, false, nil
	}

	err = repo.TransitionClaim(ctx, s.DB, c.ID,
		[]string{domain.ClaimCreated, domain.ClaimPending}, domain.ClaimPaid,
		repo.ClaimUpdate{PaymentID: domain.Str(paymentID)})
	if errors.Is(err, repo.ErrStaleTransition) {
		// Someone else settled it first.
		c, err = s.Claim(ctx, c.ID)
		return c, false, err
	}
	if err != nil {
		return nil, false, err
	}
	observability.ClaimTransitions.WithLabelValues(domain.ClaimPaid).Inc()

	if c, err = s.Claim(ctx, c.ID); err != nil {
		return nil, true, err
	}
	log.Ctx(ctx).Info().Uint64("claim_id", c.ID).Msg("claim paid")
	if derr := s.Deliver(ctx, c); derr != nil {
		log.Ctx(ctx).Error().Err(derr).Uint64("claim_id", c.ID).Msg("delivery failed after payment")
	}
	return c, true, nil
}

// AdminDecide approves or rejects a non-terminal claim. Deciding a
// terminal claim returns the claim with ErrClaimConflict.
func (s *EntitlementService) AdminDecide(ctx context.Context, adminID int64, claimID uint64, approve bool) (*domain.PaymentClaim, error) {
	ctx, span := s.tracer().Start(ctx, "AdminDecide",
		trace.WithAttributes(
			attribute.Int64("claim.id", int64(claimID)),
			attribute.Bool("approve", approve),
		),
	)
	defer span.End()

	if s.AdminUserID == 0 || adminID != s.AdminUserID {
		return nil, ErrForbidden
	}
	c, err := s.Claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if c.Terminal() {
		return c, ErrClaimConflict
	}

	to := domain.ClaimRejected
	if approve {
		to = domain.ClaimApproved
	}
	err = repo.TransitionClaim(ctx, s.DB, c.ID,
		[]string{domain.ClaimCreated, domain.ClaimPending}, to,
		repo.ClaimUpdate{DecidedBy: &adminID})
	if errors.Is(err, repo.ErrStaleTransition) {
		if c, err = s.Claim(ctx, claimID); err != nil {
			return nil, err
		}
		return c, ErrClaimConflict
	}
	if err != nil {
		return nil, err
	}
	observability.ClaimTransitions.WithLabelValues(to).Inc()

	if c, err = s.Claim(ctx, claimID); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Uint64("claim_id", c.ID).Str("status", c.Status).Int64("admin_id", adminID).Msg("claim decided")

	if approve {
		if derr := s.Deliver(ctx, c); derr != nil {
			log.Ctx(ctx).Error().Err(derr).Uint64("claim_id", c.ID).Msg("delivery failed after approval")
		}
	} else {
		s.send(ctx, transport.Send(c.UserID, s.Formatter.Rejected(c.ID)))
	}
	return c, nil
}

// Deliver sends the paid window of leads to the claimant: limit is the
// tier size, offset the number already shown for free. A transport failure
// is recorded on the claim and returned; the claim status is untouched.
func (s *EntitlementService) Deliver(ctx context.Context, c *domain.PaymentClaim) error {
	ctx, span := s.tracer().Start(ctx, "Deliver",
		trace.WithAttributes(attribute.Int64("claim.id", int64(c.ID))),
	)
	defer span.End()

	if !c.Entitled() {
		return ErrClaimConflict
	}
	tier, ok := s.Tiers.Tier(c.Tier)
	if !ok {
		return ErrUnknownTier
	}
	req, err := s.Leads.Get(ctx, c.RequestID)
	if err != nil {
		return err
	}
	leads, err := s.Leads.ResolveLeads(ctx, req, tier.Leads, req.FreeLeadsShown)
	if err != nil {
		return err
	}

	text := s.Formatter.PaidReveal(format.SearchOf(*req), leads, tier.Tips)
	if c.Status == domain.ClaimApproved {
		text = s.Formatter.Approved(text)
	}
	if err := s.Sender.Send(ctx, transport.Send(c.UserID, text)); err != nil {
		observability.Deliveries.WithLabelValues("failed").Inc()
		if merr := repo.MarkClaimDeliveryFailed(ctx, s.DB, c.ID, err.Error()); merr != nil {
			log.Ctx(ctx).Error().Err(merr).Uint64("claim_id", c.ID).Msg("could not record delivery failure")
		}
		return fmt.Errorf("deliver claim %d: %w", c.ID, err)
	}

	outcome := "sent"
	if len(leads) == 0 {
		outcome = "empty"
		log.Ctx(ctx).Warn().Uint64("claim_id", c.ID).Uint64("request_id", c.RequestID).
			Msg("paid claim delivered with no leads; needs manual follow-up")
	}
	observability.Deliveries.WithLabelValues(outcome).Inc()
	return repo.MarkClaimDelivered(ctx, s.DB, c.ID, time.Now())
}

// ClaimsPage lists claims newest first, optionally filtered by status, with
// the total for the filter. page is 1-based.
func (s *EntitlementService) ClaimsPage(ctx context.Context, status string, page, pageSize int) ([]domain.PaymentClaim, int64, error) {
	switch status {
	case "", domain.ClaimCreated, domain.ClaimPending, domain.ClaimApproved, domain.ClaimPaid, domain.ClaimRejected:
	default:
		return nil, 0, ErrInvalidStatus
	}
	p := utils.Page{Number: page, Size: pageSize}.Normalize()
	total, err := repo.CountClaims(ctx, s.DB, status)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.PaymentClaim{}, 0, nil
	}
	items, err := repo.ListClaimsPage(ctx, s.DB, status, p.Offset(), p.Size)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *EntitlementService) send(ctx context.Context, m transport.Message) {
	if err := s.Sender.Send(ctx, m); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("chat_id", m.ChatID).Msg("message not sent")
	}
}
