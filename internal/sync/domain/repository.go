package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists the webhook event log.
//
// FindByProviderEventID returns (nil, nil) when no record exists; a
// non-nil error means the query itself failed.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *EventRecord) error
	FindByProviderEventID(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id int64) error
}
