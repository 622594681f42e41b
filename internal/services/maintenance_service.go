// Package services – MaintenanceService
//
// This file implements the periodic sweep: expired listings and expired
// webhook-event records are deleted. The sweep is idempotent and safe to
// run concurrently with ingest.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/observability"
	"github.com/tbourn/go-society-bot/internal/repo"
)

// SweepResult counts the rows a sweep removed.
type SweepResult struct {
	Listings      int64 `json:"listings"`
	WebhookEvents int64 `json:"webhook_events"`
}

// MaintenanceService runs cleanup.
type MaintenanceService struct {
	DB *gorm.DB

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Sweep deletes expired listings and webhook events.
func (s *MaintenanceService) Sweep(ctx context.Context) (SweepResult, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	var out SweepResult
	n, err := repo.DeleteExpired(ctx, s.DB, now)
	if err != nil {
		return out, err
	}
	out.Listings = n
	observability.ExpiredListingsDeleted.Add(float64(n))

	if out.WebhookEvents, err = repo.DeleteExpiredWebhookEvents(ctx, s.DB, now); err != nil {
		return out, err
	}
	log.Ctx(ctx).Info().
		Int64("listings", out.Listings).
		Int64("webhook_events", out.WebhookEvents).
		Msg("sweep finished")
	return out, nil
}
