// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// WebhookEvent model used to acknowledge provider redeliveries without
// repeating side effects.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/domain"
)

// GetWebhookEvent returns a non-expired record or ErrNotFound.
func GetWebhookEvent(ctx context.Context, db *gorm.DB, provider, eventID string, now time.Time) (*domain.WebhookEvent, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.WebhookEvent
	err := db.WithContext(ctx).
		Where("provider = ? AND event_id = ? AND expires_at > ?", provider, eventID, now.UTC()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// RecordWebhookEvent inserts a record and returns ErrDuplicate when the
// (provider, event_id) pair was already seen.
func RecordWebhookEvent(ctx context.Context, db *gorm.DB, provider, eventID, eventType string, claimID *uint64, ttl time.Duration) (*domain.WebhookEvent, error) {
	now := time.Now().UTC()
	rec := &domain.WebhookEvent{
		ID:        uuid.NewString(),
		Provider:  provider,
		EventID:   eventID,
		EventType: eventType,
		ClaimID:   claimID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// DeleteExpiredWebhookEvents removes records past their retention.
func DeleteExpiredWebhookEvents(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&domain.WebhookEvent{})
	return res.RowsAffected, res.Error
}
