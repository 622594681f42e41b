// Package services – ListingService
//
// This file implements the ingest pipeline for group messages: classify,
// store, look up opposite-type leads and, when there are any, freeze the
// search as a lead request and reply in the group with a hook.
//
// Unclassifiable text is the common case and yields an "ignored" outcome
// with no reply. Transport failures are logged and never fail the event.
package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/classifier"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/observability"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Classifier maps raw text to a classification, or nil for noise.
type Classifier interface {
	Classify(ctx context.Context, text string) *classifier.Result
}

// Ingest outcomes.
const (
	OutcomeIgnored = "ignored"
	OutcomeStored  = "stored"
	OutcomeMatched = "matched"
)

// IncomingMessage is a group text message forwarded by the gateway.
type IncomingMessage struct {
	ChatID    int64
	MessageID int64
	UserID    int64
	Username  string
	FirstName string
	Text      string
}

// IngestResult reports what HandleGroupMessage did.
type IngestResult struct {
	Outcome       string `json:"outcome"`
	ListingID     uint64 `json:"listing_id,omitempty"`
	LeadRequestID uint64 `json:"lead_request_id,omitempty"`
}

// ChatPolicy restricts the chats the bot serves. An empty list allows all.
type ChatPolicy struct {
	Allowed []int64
}

// Allows reports whether chatID may use the bot.
func (p ChatPolicy) Allows(chatID int64) bool {
	return len(p.Allowed) == 0 || slices.Contains(p.Allowed, chatID)
}

// ListingService turns group messages into listings and hooks.
type ListingService struct {
	DB         *gorm.DB
	Classifier Classifier
	Formatter  *format.Formatter
	Sender     transport.Sender
	Policy     ChatPolicy

	// TTL is the listing lifetime.
	TTL time.Duration
	// SampleSize caps the messages inspected for hook details.
	SampleSize int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *ListingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// HandleGroupMessage runs the ingest pipeline on one message. Only
// persistence failures are returned as errors.
func (s *ListingService) HandleGroupMessage(ctx context.Context, m IncomingMessage) (IngestResult, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "HandleGroupMessage",
		trace.WithAttributes(
			attribute.Int64("chat.id", m.ChatID),
			attribute.Int64("user.id", m.UserID),
		),
	)
	defer span.End()

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return IngestResult{Outcome: OutcomeIgnored}, ErrEmptyMessage
	}
	if !s.Policy.Allows(m.ChatID) {
		return IngestResult{Outcome: OutcomeIgnored}, ErrChatNotAllowed
	}

	now := s.now()
	s.purgeExpired(ctx, now)

	res := s.Classifier.Classify(ctx, text)
	if res == nil {
		return IngestResult{Outcome: OutcomeIgnored}, nil
	}
	span.SetAttributes(
		attribute.String("category", res.Category),
		attribute.String("listing_type", res.ListingType),
	)

	l := &domain.Listing{
		UserID:           m.UserID,
		Username:         domain.Str(strings.TrimPrefix(m.Username, "@")),
		FirstName:        domain.Str(m.FirstName),
		MessageID:        m.MessageID,
		ChatID:           m.ChatID,
		Category:         res.Category,
		Subcategory:      res.Subcategory,
		ListingType:      res.ListingType,
		Contact:          res.Contact,
		Message:          text,
		PropertyType:     res.PropertyType,
		GenderPreference: res.GenderPreference,
		PropertySource:   res.PropertySource,
	}
	if err := repo.InsertListing(ctx, s.DB, l, s.TTL, now); err != nil {
		return IngestResult{}, err
	}
	logger := log.Ctx(ctx).With().
		Uint64("listing_id", l.ID).
		Str("category", l.Category).
		Str("listing_type", l.ListingType).
		Logger()
	logger.Info().Msg("listing stored")

	out := IngestResult{Outcome: OutcomeStored, ListingID: l.ID}

	filter := repo.ListingFilter{
		Category:         l.Category,
		ListingType:      domain.Opposite(l.ListingType),
		Subcategory:      l.Subcategory,
		PropertyType:     l.PropertyType,
		GenderPreference: l.GenderPreference,
	}
	leads, err := repo.CountLeads(ctx, s.DB, filter, now)
	if err != nil {
		return out, err
	}
	if leads == 0 {
		return out, nil
	}
	stats, err := repo.AggregateStats(ctx, s.DB, filter, now)
	if err != nil {
		return out, err
	}

	req := &domain.LeadRequest{
		UserID:           m.UserID,
		Category:         l.Category,
		Subcategory:      l.Subcategory,
		PropertyType:     l.PropertyType,
		GenderPreference: l.GenderPreference,
		Direction:        l.ListingType,
		SourceChatID:     m.ChatID,
	}
	if err := repo.CreateLeadRequest(ctx, s.DB, req, now); err != nil {
		return out, err
	}
	out.Outcome = OutcomeMatched
	out.LeadRequestID = req.ID
	observability.Matches.WithLabelValues(l.ListingType).Inc()

	hook := format.Hook{
		Search:    format.SearchOf(*req),
		RequestID: req.ID,
		Total:     leads,
		Recent7d:  min(stats.Recent7d, leads),
	}

	var reply format.Reply
	var ok bool
	if l.ListingType == domain.ListingQuery {
		samples, err := repo.SampleMessages(ctx, s.DB, filter, now, s.SampleSize)
		if err != nil {
			logger.Warn().Err(err).Msg("hook samples unavailable")
		}
		hook.Samples = samples
		reply, ok = s.Formatter.QueryHook(hook)
	} else {
		// People searching, whether or not they left a number.
		hook.Total = max(stats.Total, leads)
		hook.Recent7d = stats.Recent7d
		reply, ok = s.Formatter.OfferHook(hook)
	}
	if ok {
		msg := transport.Reply(m.ChatID, m.MessageID, reply.Text, reply.Buttons...)
		if err := s.Sender.Send(ctx, msg); err != nil {
			logger.Error().Err(err).Uint64("request_id", req.ID).Msg("hook not sent")
		}
	}
	logger.Info().Uint64("request_id", req.ID).Int64("leads", leads).Msg("match found")
	return out, nil
}

// purgeExpired drops expired listings on the write path. Failures only
// delay cleanup until the next sweep.
func (s *ListingService) purgeExpired(ctx context.Context, now time.Time) {
	n, err := repo.DeleteExpired(ctx, s.DB, now)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("lazy purge failed")
		return
	}
	if n > 0 {
		observability.ExpiredListingsDeleted.Add(float64(n))
	}
}

// HandleMembership reacts to the bot joining a chat. Joining a chat
// outside the policy publishes a leave action; it reports whether it did.
func (s *ListingService) HandleMembership(ctx context.Context, chatID int64, joined bool) (bool, error) {
	if !joined || s.Policy.Allows(chatID) {
		return false, nil
	}
	log.Ctx(ctx).Warn().Int64("chat_id", chatID).Msg("added to a chat outside the allow-list; leaving")
	if err := s.Sender.Send(ctx, transport.Leave(chatID)); err != nil {
		return false, err
	}
	return true, nil
}
