package domain

import "time"

// WebhookEvent records a provider event id that has already been processed,
// keyed by (provider, event_id). Providers redeliver on timeouts; a second
// delivery with the same id is acknowledged without re-running side effects.
type WebhookEvent struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Provider  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_provider_event,priority:1"`
	EventID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_provider_event,priority:2"`
	EventType string    `gorm:"type:TEXT NOT NULL"`
	ClaimID   *uint64   `gorm:"type:INTEGER"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (WebhookEvent) TableName() string { return "webhook_events" }
