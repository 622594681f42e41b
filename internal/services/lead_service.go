// Package services – LeadService
//
// This file implements the private side of a match: resolving a frozen lead
// request against live listings, the free preview shown when a user follows
// a deep link, and the upsell towards the paid tiers.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Start outcomes.
const (
	StartHelp    = "help"
	StartExpired = "expired"
	StartShown   = "shown"
	StartEmpty   = "empty"
)

const leadsPayloadPrefix = "leads_"

// StartResult reports what OpenLeads showed.
type StartResult struct {
	Outcome   string `json:"outcome"`
	RequestID uint64 `json:"request_id,omitempty"`
	Free      int    `json:"free,omitempty"`
	Remaining int64  `json:"remaining,omitempty"`
}

// LeadService resolves lead requests and renders the free preview.
type LeadService struct {
	DB        *gorm.DB
	Formatter *format.Formatter
	Sender    transport.Sender
	FreeLeads int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *LeadService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns a lead request, or ErrLeadRequestNotFound.
func (s *LeadService) Get(ctx context.Context, id uint64) (*domain.LeadRequest, error) {
	r, err := repo.GetLeadRequest(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLeadRequestNotFound
	}
	return r, err
}

func filterFor(r *domain.LeadRequest) repo.ListingFilter {
	return repo.ListingFilter{
		Category:         r.Category,
		ListingType:      r.SearchType(),
		Subcategory:      r.Subcategory,
		PropertyType:     r.PropertyType,
		GenderPreference: r.GenderPreference,
	}
}

// ResolveLeads re-runs the frozen search against live listings. Results
// may differ between calls as inventory changes.
func (s *LeadService) ResolveLeads(ctx context.Context, r *domain.LeadRequest, limit, offset int) ([]domain.Listing, error) {
	return repo.FindOpposite(ctx, s.DB, filterFor(r), s.now(), limit, offset)
}

// CountLeads returns how many distinct leads the request resolves to now.
func (s *LeadService) CountLeads(ctx context.Context, r *domain.LeadRequest) (int64, error) {
	return repo.CountLeads(ctx, s.DB, filterFor(r), s.now())
}

// ParseStartPayload extracts the request id from a "leads_<id>" deep-link
// payload.
func ParseStartPayload(payload string) (uint64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), leadsPayloadPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// HandleStart answers a private /start. A leads payload opens the lead
// flow; anything else gets the help text.
func (s *LeadService) HandleStart(ctx context.Context, userID, chatID int64, payload string) (StartResult, error) {
	if id, ok := ParseStartPayload(payload); ok {
		return s.OpenLeads(ctx, userID, chatID, id)
	}
	if strings.HasPrefix(payload, leadsPayloadPrefix) {
		return s.expired(ctx, chatID)
	}
	s.send(ctx, transport.Send(chatID, s.Formatter.Help()))
	return StartResult{Outcome: StartHelp}, nil
}

// OpenLeads sends the free preview for request id to chatID, followed by
// the upsell when more leads remain.
func (s *LeadService) OpenLeads(ctx context.Context, userID, chatID int64, id uint64) (StartResult, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "OpenLeads",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("request.id", int64(id)),
		),
	)
	defer span.End()

	req, err := s.Get(ctx, id)
	if errors.Is(err, ErrLeadRequestNotFound) {
		log.Ctx(ctx).Debug().Uint64("request_id", id).Msg("unknown lead request")
		return s.expired(ctx, chatID)
	}
	if err != nil {
		return StartResult{}, err
	}

	free, err := s.ResolveLeads(ctx, req, s.FreeLeads, 0)
	if err != nil {
		return StartResult{}, err
	}
	total, err := s.CountLeads(ctx, req)
	if err != nil {
		return StartResult{}, err
	}
	if len(free) > 0 {
		if err := repo.RaiseFreeLeadsShown(ctx, s.DB, req.ID, len(free)); err != nil {
			return StartResult{}, err
		}
	}

	search := format.SearchOf(*req)
	s.send(ctx, transport.Send(chatID, s.Formatter.FreePreview(search, free)))

	out := StartResult{Outcome: StartShown, RequestID: req.ID, Free: len(free)}
	if len(free) == 0 {
		out.Outcome = StartEmpty
		return out, nil
	}
	if up, ok := s.Formatter.Upsell(search, total, req.ID); ok {
		s.send(ctx, transport.Send(chatID, up.Text, up.Buttons...))
		out.Remaining = total - int64(len(free))
	}
	log.Ctx(ctx).Info().
		Uint64("request_id", req.ID).
		Int("free", len(free)).
		Int64("total", total).
		Msg("free preview shown")
	return out, nil
}

func (s *LeadService) expired(ctx context.Context, chatID int64) (StartResult, error) {
	s.send(ctx, transport.Send(chatID, s.Formatter.LinkExpired()))
	return StartResult{Outcome: StartExpired}, nil
}

func (s *LeadService) send(ctx context.Context, m transport.Message) {
	if err := s.Sender.Send(ctx, m); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("chat_id", m.ChatID).Msg("message not sent")
	}
}
