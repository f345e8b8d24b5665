package domain

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the local profile row. Only the billing columns are owned by
// this service; they are written as a side effect of first-subscription
// reconciliation and never read back here.
type User struct {
	ID             string            `json:"id" gorm:"primaryKey"`
	BillingAddress datatypes.JSONMap `json:"billing_address,omitempty" gorm:"type:jsonb"`
	PaymentMethod  datatypes.JSONMap `json:"payment_method,omitempty" gorm:"type:jsonb"`
}

func (User) TableName() string { return "users" }

type Repository interface {
	UpdateBillingDetails(ctx context.Context, db *gorm.DB, userID string, billingAddress, paymentMethod datatypes.JSONMap) error
}
