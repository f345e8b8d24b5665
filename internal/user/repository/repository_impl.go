package repository

import (
	"context"

	"github.com/smallbiznis/subsync/internal/user/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpdateBillingDetails(ctx context.Context, db *gorm.DB, userID string, billingAddress, paymentMethod datatypes.JSONMap) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET billing_address = ?, payment_method = ? WHERE id = ?`,
		billingAddress,
		paymentMethod,
		userID,
	).Error
}
