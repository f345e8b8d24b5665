// Package domain contains the persistence model for synced subscriptions.
package domain

import (
	"time"

	"github.com/smallbiznis/subsync/internal/stripe"
	"gorm.io/datatypes"
)

// SubscriptionStatus is the provider's subscription lifecycle state,
// stored verbatim.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// Subscription captures the provider's subscription state for one local
// user. Rows are replaced wholesale on upsert; the provider object is
// the source of truth.
type Subscription struct {
	ID                 string             `json:"id" gorm:"primaryKey"`
	UserID             string             `json:"user_id" gorm:"type:text;not null;index"`
	Status             SubscriptionStatus `json:"status" gorm:"type:text;not null"`
	Metadata           datatypes.JSONMap  `json:"metadata,omitempty" gorm:"type:jsonb"`
	PriceID            string             `json:"price_id" gorm:"type:text;not null"`
	Quantity           int64              `json:"quantity"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end" gorm:"not null;default:false"`
	Created            time.Time          `json:"created" gorm:"not null"`
	CurrentPeriodStart time.Time          `json:"current_period_start" gorm:"not null"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end" gorm:"not null"`
	EndedAt            *time.Time         `json:"ended_at,omitempty"`
	CancelAt           *time.Time         `json:"cancel_at,omitempty"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	TrialStart         *time.Time         `json:"trial_start,omitempty"`
	TrialEnd           *time.Time         `json:"trial_end,omitempty"`
}

func (Subscription) TableName() string { return "subscriptions" }

// MapSubscription builds the storage row from the provider object. The
// price reference comes from the first subscription item.
func MapSubscription(subscription stripe.Subscription, userID string) Subscription {
	priceID := ""
	if len(subscription.Items.Data) > 0 {
		priceID = subscription.Items.Data[0].Price.ID
	}

	return Subscription{
		ID:                 subscription.ID,
		UserID:             userID,
		Status:             SubscriptionStatus(subscription.Status),
		Metadata:           metadataMap(subscription.Metadata),
		PriceID:            priceID,
		Quantity:           subscription.Quantity,
		CancelAtPeriodEnd:  subscription.CancelAtPeriodEnd,
		Created:            ToStorageDate(subscription.Created),
		CurrentPeriodStart: ToStorageDate(subscription.CurrentPeriodStart),
		CurrentPeriodEnd:   ToStorageDate(subscription.CurrentPeriodEnd),
		EndedAt:            ToOptionalStorageDate(subscription.EndedAt),
		CancelAt:           ToOptionalStorageDate(subscription.CancelAt),
		CanceledAt:         ToOptionalStorageDate(subscription.CanceledAt),
		TrialStart:         ToOptionalStorageDate(subscription.TrialStart),
		TrialEnd:           ToOptionalStorageDate(subscription.TrialEnd),
	}
}

func metadataMap(metadata map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}
