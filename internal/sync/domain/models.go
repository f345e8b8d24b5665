// Package domain holds the webhook event log and the dispatcher contract.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// EventRecord is one received webhook event. The unique key on
// (provider, provider_event_id) makes redelivered events observable
// before any handler runs.
type EventRecord struct {
	ID              int64          `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

func (EventRecord) TableName() string { return "webhook_events" }
