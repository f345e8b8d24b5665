package repository

import (
	"context"

	"github.com/smallbiznis/subsync/internal/price/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, price *domain.Price) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO prices (id, product_id, active, currency, description, type, unit_amount, interval, interval_count, trial_period_days, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   product_id = excluded.product_id,
		   active = excluded.active,
		   currency = excluded.currency,
		   description = excluded.description,
		   type = excluded.type,
		   unit_amount = excluded.unit_amount,
		   interval = excluded.interval,
		   interval_count = excluded.interval_count,
		   trial_period_days = excluded.trial_period_days,
		   metadata = excluded.metadata`,
		price.ID,
		price.ProductID,
		price.Active,
		price.Currency,
		price.Description,
		price.Type,
		price.UnitAmount,
		price.Interval,
		price.IntervalCount,
		price.TrialPeriodDays,
		price.Metadata,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM prices WHERE id = ?`,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Price, error) {
	var price domain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT id, product_id, active, currency, description, type, unit_amount, interval, interval_count, trial_period_days, metadata
		 FROM prices WHERE id = ?`,
		id,
	).Scan(&price).Error
	if err != nil {
		return nil, err
	}
	if price.ID == "" {
		return nil, nil
	}
	return &price, nil
}
