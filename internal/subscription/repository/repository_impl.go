package repository

import (
	"context"

	"github.com/smallbiznis/subsync/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, subscription domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (
		   id, user_id, status, metadata, price_id, quantity,
		   cancel_at_period_end, created, current_period_start, current_period_end,
		   ended_at, cancel_at, canceled_at, trial_start, trial_end
		 )
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   user_id = excluded.user_id,
		   status = excluded.status,
		   metadata = excluded.metadata,
		   price_id = excluded.price_id,
		   quantity = excluded.quantity,
		   cancel_at_period_end = excluded.cancel_at_period_end,
		   created = excluded.created,
		   current_period_start = excluded.current_period_start,
		   current_period_end = excluded.current_period_end,
		   ended_at = excluded.ended_at,
		   cancel_at = excluded.cancel_at,
		   canceled_at = excluded.canceled_at,
		   trial_start = excluded.trial_start,
		   trial_end = excluded.trial_end`,
		subscription.ID,
		subscription.UserID,
		subscription.Status,
		subscription.Metadata,
		subscription.PriceID,
		subscription.Quantity,
		subscription.CancelAtPeriodEnd,
		subscription.Created,
		subscription.CurrentPeriodStart,
		subscription.CurrentPeriodEnd,
		subscription.EndedAt,
		subscription.CancelAt,
		subscription.CanceledAt,
		subscription.TrialStart,
		subscription.TrialEnd,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Subscription, error) {
	var subscription domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, status, metadata, price_id, quantity,
		        cancel_at_period_end, created, current_period_start, current_period_end,
		        ended_at, cancel_at, canceled_at, trial_start, trial_end
		 FROM subscriptions WHERE id = ?`,
		id,
	).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == "" {
		return nil, nil
	}
	return &subscription, nil
}
