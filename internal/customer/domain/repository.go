package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads and writes the user↔provider-customer mapping.
// Lookups return (nil, nil) when the mapping does not exist; an error
// return always means the query itself failed.
type Repository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*Customer, error)
	FindByProviderID(ctx context.Context, db *gorm.DB, providerID string) (*Customer, error)
	Save(ctx context.Context, db *gorm.DB, customer *Customer) error
}
