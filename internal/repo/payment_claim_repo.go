// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PaymentClaim model.
//
// Status changes go through TransitionClaim, a single conditional UPDATE
// keyed on (id, current status). When two writers race on the same claim,
// exactly one sees RowsAffected == 1; the other gets ErrStaleTransition.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/domain"
)

// CreateClaim inserts c. A provider link id already attached to another
// claim yields ErrDuplicate.
func CreateClaim(ctx context.Context, db *gorm.DB, c *domain.PaymentClaim) error {
	c.ID = 0
	if c.Status == "" {
		c.Status = domain.ClaimCreated
	}
	if err := db.WithContext(ctx).Omit("Request").Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetClaim fetches a claim by id, or ErrNotFound.
func GetClaim(ctx context.Context, db *gorm.DB, id uint64) (*domain.PaymentClaim, error) {
	var c domain.PaymentClaim
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClaimByProviderLink looks a claim up by the provider's link id.
func GetClaimByProviderLink(ctx context.Context, db *gorm.DB, linkID string) (*domain.PaymentClaim, error) {
	var c domain.PaymentClaim
	if err := db.WithContext(ctx).Where("provider_link_id = ?", linkID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// AttachProviderLink stores the provider link on a claim still in created.
func AttachProviderLink(ctx context.Context, db *gorm.DB, id uint64, linkID, url string) error {
	res := db.WithContext(ctx).
		Model(&domain.PaymentClaim{}).
		Where("id = ? AND status = ?", id, domain.ClaimCreated).
		Updates(map[string]any{
			"provider_link_id": linkID,
			"provider_url":     url,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ClaimUpdate carries optional columns written together with a transition.
type ClaimUpdate struct {
	PaymentID *string
	DecidedBy *int64
}

// TransitionClaim moves claim id to status to, provided its current status
// is one of from. The status and any extra columns change in one statement.
func TransitionClaim(ctx context.Context, db *gorm.DB, id uint64, from []string, to string, extra ClaimUpdate) error {
	cols := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if extra.PaymentID != nil {
		cols["payment_id"] = *extra.PaymentID
	}
	if extra.DecidedBy != nil {
		cols["decided_by"] = *extra.DecidedBy
	}
	res := db.WithContext(ctx).
		Model(&domain.PaymentClaim{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var cnt int64
		if err := db.WithContext(ctx).Model(&domain.PaymentClaim{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
		return ErrStaleTransition
	}
	return nil
}

// MarkClaimDelivered stamps delivered_at and clears any earlier delivery
// error. Status is untouched.
func MarkClaimDelivered(ctx context.Context, db *gorm.DB, id uint64, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.PaymentClaim{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered_at":   at.UTC(),
			"delivery_error": nil,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// MarkClaimDeliveryFailed records why delivery failed. Status is untouched.
func MarkClaimDeliveryFailed(ctx context.Context, db *gorm.DB, id uint64, reason string) error {
	return db.WithContext(ctx).
		Model(&domain.PaymentClaim{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivery_error": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// CountClaims returns the number of claims in status (all when empty).
func CountClaims(ctx context.Context, db *gorm.DB, status string) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.PaymentClaim{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

// ListClaimsPage returns claims in status (all when empty), newest first.
func ListClaimsPage(ctx context.Context, db *gorm.DB, status string, offset, limit int) ([]domain.PaymentClaim, error) {
	var out []domain.PaymentClaim
	q := db.WithContext(ctx).Model(&domain.PaymentClaim{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
