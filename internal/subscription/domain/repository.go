package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists synced subscription rows.
//
// FindByID returns (nil, nil) when no row exists for the id; a non-nil
// error means the query itself failed.
type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, subscription Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Subscription, error)
}
