// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// LeadRequest model, the frozen search snapshots behind deep links.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/domain"
)

// CreateLeadRequest inserts r with CreatedAt=now (UTC) and writes the
// generated id back into r.
func CreateLeadRequest(ctx context.Context, db *gorm.DB, r *domain.LeadRequest, now time.Time) error {
	r.ID = 0
	r.CreatedAt = now.UTC()
	return db.WithContext(ctx).Create(r).Error
}

// GetLeadRequest fetches a request by id, or ErrNotFound.
func GetLeadRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.LeadRequest, error) {
	var r domain.LeadRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// RaiseFreeLeadsShown sets the disclosure counter to n unless it is already
// at least n. The counter never decreases.
func RaiseFreeLeadsShown(ctx context.Context, db *gorm.DB, id uint64, n int) error {
	res := db.WithContext(ctx).
		Model(&domain.LeadRequest{}).
		Where("id = ? AND free_leads_shown < ?", id, n).
		Update("free_leads_shown", n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either already at n or missing; only the latter is an error.
		var cnt int64
		if err := db.WithContext(ctx).Model(&domain.LeadRequest{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
	}
	return nil
}
