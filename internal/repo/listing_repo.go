// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Listing
// model: inserts, opposite-type matching with contact deduplication, hook
// statistics and expiry cleanup.
//
// All reads take an explicit "now" so expiry is evaluated against the
// caller's clock; expired rows never match, whether or not they have been
// swept yet.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/domain"
)

// ListingFilter selects listings of one category and type. Nil optional
// fields do not filter.
//
// Subcategory matches as a substring of either the stored subcategory or the
// message body. PropertyType and GenderPreference match rows carrying the
// same value or no value at all.
type ListingFilter struct {
	Category         string
	ListingType      string
	Subcategory      *string
	PropertyType     *string
	GenderPreference *string
}

// Stats is the hook summary for a filter.
type Stats struct {
	Total    int64
	Recent7d int64
}

// CategoryCount is one row of the active-listings breakdown.
type CategoryCount struct {
	Category string
	Count    int64
}

// InsertListing appends l with CreatedAt=now and ExpiresAt=now+ttl and
// computes its dedup key. The generated id is written back into l.
func InsertListing(ctx context.Context, db *gorm.DB, l *domain.Listing, ttl time.Duration, now time.Time) error {
	now = now.UTC()
	l.ID = 0
	l.CreatedAt = now
	l.ExpiresAt = now.Add(ttl)
	l.DedupKey = domain.DedupKeyFor(l.UserID, l.Contact)
	return db.WithContext(ctx).Create(l).Error
}

// GetListing fetches a listing by id, or ErrNotFound.
func GetListing(ctx context.Context, db *gorm.DB, id uint64) (*domain.Listing, error) {
	var l domain.Listing
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FindOpposite returns non-expired listings matching f that carry a contact,
// one per dedup key (the most recent), newest first, paginated by
// limit/offset.
func FindOpposite(ctx context.Context, db *gorm.DB, f ListingFilter, now time.Time, limit, offset int) ([]domain.Listing, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	ranked := withContact(applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f, now)).
		Select("*, ROW_NUMBER() OVER (PARTITION BY dedup_key ORDER BY created_at DESC, id DESC) AS rn")

	var out []domain.Listing
	err := db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Where("rn = 1").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

// CountLeads returns how many distinct leads FindOpposite can page through.
func CountLeads(ctx context.Context, db *gorm.DB, f ListingFilter, now time.Time) (int64, error) {
	var n int64
	err := withContact(applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f, now)).
		Distinct("dedup_key").
		Count(&n).Error
	return n, err
}

// AggregateStats counts non-expired rows matching f and the subset created
// in the seven days before now.
func AggregateStats(ctx context.Context, db *gorm.DB, f ListingFilter, now time.Time) (Stats, error) {
	var s Stats
	if err := applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f, now).
		Count(&s.Total).Error; err != nil {
		return Stats{}, err
	}
	if s.Total == 0 {
		return s, nil
	}
	weekAgo := now.UTC().Add(-7 * 24 * time.Hour)
	if err := applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f, now).
		Where("created_at >= ?", weekAgo).
		Count(&s.Recent7d).Error; err != nil {
		return Stats{}, err
	}
	return s, nil
}

// SampleMessages returns the bodies of up to limit recent rows matching f,
// used to derive price and preference hints for hook copy.
func SampleMessages(ctx context.Context, db *gorm.DB, f ListingFilter, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []string
	err := applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f, now).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Pluck("message", &out).Error
	return out, err
}

// DeleteExpired removes every listing whose expires_at is not after now and
// returns the number of rows removed. Safe to run concurrently.
func DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&domain.Listing{})
	return res.RowsAffected, res.Error
}

// CountByCategory returns active listing counts per category, largest first.
func CountByCategory(ctx context.Context, db *gorm.DB, now time.Time) ([]CategoryCount, error) {
	var out []CategoryCount
	err := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Select("category, COUNT(*) AS count").
		Where("expires_at > ?", now.UTC()).
		Group("category").
		Order("count DESC, category ASC").
		Scan(&out).Error
	return out, err
}

// applyListingFilter binds every clause; no caller-supplied text is ever
// interpolated into SQL.
func applyListingFilter(q *gorm.DB, f ListingFilter, now time.Time) *gorm.DB {
	q = q.Where("category = ? AND listing_type = ? AND expires_at > ?", f.Category, f.ListingType, now.UTC())
	if term := likeTerm(f.Subcategory); term != "" {
		q = q.Where("(LOWER(COALESCE(subcategory, '')) LIKE ? ESCAPE '!' OR LOWER(message) LIKE ? ESCAPE '!')", term, term)
	}
	if v := domain.Val(f.PropertyType); v != "" {
		q = q.Where("(property_type = ? OR property_type IS NULL OR property_type = '')", v)
	}
	if v := domain.Val(f.GenderPreference); v != "" {
		q = q.Where("(gender_preference = ? OR gender_preference IS NULL OR gender_preference = '')", v)
	}
	return q
}

func withContact(q *gorm.DB) *gorm.DB {
	return q.Where("contact IS NOT NULL AND contact <> ''")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likeTerm lowercases the subcategory and escapes LIKE wildcards so the term
// only ever matches literally.
func likeTerm(sub *string) string {
	s := strings.ToLower(strings.TrimSpace(domain.Val(sub)))
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}
