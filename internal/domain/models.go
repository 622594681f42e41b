// Package domain defines the persistence models for listings, lead requests
// and payment claims. These types are mapped with GORM and form the core data
// layer of the society bot.
package domain

import (
	"strconv"
	"time"
)

// Listing types.
const (
	ListingOffer = "offer"
	ListingQuery = "query"
)

// Property types.
const (
	PropertySale = "sale"
	PropertyRent = "rent"
)

// Gender preferences.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Property sources.
const (
	SourceOwner  = "owner"
	SourceBroker = "broker"
)

// Opposite returns the listing type a poster of t is matched against.
// Unknown values map to the empty string.
func Opposite(t string) string {
	switch t {
	case ListingOffer:
		return ListingQuery
	case ListingQuery:
		return ListingOffer
	}
	return ""
}

// Listing is one classified group message. Rows are only inserted and
// deleted on expiry, never updated.
//
// Fields:
//   - DedupKey: contact when present, otherwise "u:<user_id>"; one lead is
//     disclosed per distinct key.
//   - ExpiresAt: CreatedAt plus the configured TTL; rows past it are invisible.
type Listing struct {
	ID               uint64    `json:"id"                          gorm:"primaryKey;autoIncrement"`
	UserID           int64     `json:"user_id"                     gorm:"not null;index"`
	Username         *string   `json:"username,omitempty"          gorm:"type:varchar(64)"`
	FirstName        *string   `json:"first_name,omitempty"        gorm:"type:varchar(128)"`
	MessageID        int64     `json:"message_id"`
	ChatID           int64     `json:"chat_id"                     gorm:"index"`
	Category         string    `json:"category"                    gorm:"type:varchar(32);not null;index"`
	Subcategory      *string   `json:"subcategory,omitempty"       gorm:"type:varchar(64)"`
	ListingType      string    `json:"listing_type"                gorm:"type:varchar(8);not null;index;check:listing_type IN ('offer','query')"`
	Contact          *string   `json:"contact,omitempty"           gorm:"type:varchar(16)"`
	DedupKey         string    `json:"-"                           gorm:"type:varchar(32);not null;index"`
	Message          string    `json:"message"                     gorm:"type:text;not null"`
	PropertyType     *string   `json:"property_type,omitempty"     gorm:"type:varchar(8)"`
	GenderPreference *string   `json:"gender_preference,omitempty" gorm:"type:varchar(8)"`
	PropertySource   *string   `json:"property_source,omitempty"   gorm:"type:varchar(8)"`
	CreatedAt        time.Time `json:"created_at"                  gorm:"not null;index"`
	ExpiresAt        time.Time `json:"expires_at"                  gorm:"not null;index"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// DedupKeyFor returns the grouping key for a poster and optional contact.
func DedupKeyFor(userID int64, contact *string) string {
	if contact != nil && *contact != "" {
		return *contact
	}
	return "u:" + strconv.FormatInt(userID, 10)
}

// LeadRequest is a frozen snapshot of a search, referenced by id from deep
// links. Only FreeLeadsShown changes after creation.
//
// Direction is the listing type the requester posted; the search runs
// against the opposite type.
type LeadRequest struct {
	ID               uint64    `json:"id"                          gorm:"primaryKey;autoIncrement"`
	UserID           int64     `json:"user_id"                     gorm:"not null;index"`
	Category         string    `json:"category"                    gorm:"type:varchar(32);not null"`
	Subcategory      *string   `json:"subcategory,omitempty"       gorm:"type:varchar(64)"`
	PropertyType     *string   `json:"property_type,omitempty"     gorm:"type:varchar(8)"`
	GenderPreference *string   `json:"gender_preference,omitempty" gorm:"type:varchar(8)"`
	Direction        string    `json:"direction"                   gorm:"type:varchar(8);not null;check:direction IN ('offer','query')"`
	SourceChatID     int64     `json:"source_chat_id"`
	FreeLeadsShown   int       `json:"free_leads_shown"            gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"                  gorm:"not null"`
}

// TableName returns the database table name for LeadRequest.
func (LeadRequest) TableName() string { return "lead_requests" }

// SearchType returns the listing type this request is resolved against.
func (r LeadRequest) SearchType() string { return Opposite(r.Direction) }

// Claim statuses.
const (
	ClaimCreated  = "created"
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimPaid     = "paid"
	ClaimRejected = "rejected"
)

// Payment channels.
const (
	ChannelManual   = "manual"
	ChannelRazorpay = "razorpay"
)

// PaymentClaim is one monetization attempt against a lead request. Claims
// are never deleted; status moves forward only, through compare-and-set
// updates in the repository.
type PaymentClaim struct {
	ID             uint64     `json:"id"                        gorm:"primaryKey;autoIncrement"`
	UserID         int64      `json:"user_id"                   gorm:"not null;index"`
	RequestID      uint64     `json:"request_id"                gorm:"not null;index"`
	Amount         int64      `json:"amount"                    gorm:"not null"`
	Tier           string     `json:"tier"                      gorm:"type:varchar(8);not null"`
	Channel        string     `json:"channel"                   gorm:"type:varchar(16);not null"`
	ProviderLinkID *string    `json:"provider_link_id,omitempty" gorm:"type:varchar(64);uniqueIndex:ux_claim_provider_link"`
	ProviderURL    *string    `json:"provider_url,omitempty"    gorm:"type:varchar(512)"`
	PaymentID      *string    `json:"payment_id,omitempty"      gorm:"type:varchar(64)"`
	Status         string     `json:"status"                    gorm:"type:varchar(16);not null;index;check:status IN ('created','pending','approved','paid','rejected')"`
	DecidedBy      *int64     `json:"decided_by,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	DeliveryError  *string    `json:"delivery_error,omitempty"  gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Request is the searched snapshot this claim pays for.
	Request LeadRequest `json:"-" gorm:"foreignKey:RequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for PaymentClaim.
func (PaymentClaim) TableName() string { return "payment_claims" }

// Terminal reports whether no further transition is allowed.
func (c PaymentClaim) Terminal() bool { return IsTerminalStatus(c.Status) }

// Entitled reports whether the claimant paid for the disclosure.
func (c PaymentClaim) Entitled() bool {
	return c.Status == ClaimPaid || c.Status == ClaimApproved
}

// IsTerminalStatus reports whether s is a final claim status.
func IsTerminalStatus(s string) bool {
	switch s {
	case ClaimApproved, ClaimPaid, ClaimRejected:
		return true
	}
	return false
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Val dereferences p, returning "" for nil.
func Val(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
