package domain

import (
	"github.com/smallbiznis/subsync/internal/stripe"
	"gorm.io/datatypes"
)

// Price mirrors the provider's price object keyed by the provider id.
type Price struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	ProductID       string            `json:"product_id" gorm:"type:text;not null"`
	Active          bool              `json:"active" gorm:"not null"`
	Currency        string            `json:"currency" gorm:"type:text;not null"`
	Description     *string           `json:"description,omitempty" gorm:"type:text"`
	Type            string            `json:"type" gorm:"type:text;not null"`
	UnitAmount      *int64            `json:"unit_amount,omitempty"`
	Interval        *string           `json:"interval,omitempty" gorm:"type:text"`
	IntervalCount   *int64            `json:"interval_count,omitempty"`
	TrialPeriodDays *int64            `json:"trial_period_days,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
}

func (Price) TableName() string { return "prices" }

// MapPrice projects a provider price payload onto the storage row.
//
// The product reference is taken only when the payload carries a bare
// id; an expanded product object maps to the empty string. Recurring
// fields stay NULL for one-time prices.
func MapPrice(price stripe.Price) Price {
	productID := ""
	if !price.Product.Expanded {
		productID = price.Product.ID
	}

	row := Price{
		ID:          price.ID,
		ProductID:   productID,
		Active:      price.Active,
		Currency:    price.Currency,
		Description: price.Nickname,
		Type:        price.Type,
		UnitAmount:  price.UnitAmount,
		Metadata:    metadataMap(price.Metadata),
	}

	if price.Recurring != nil {
		interval := price.Recurring.Interval
		intervalCount := price.Recurring.IntervalCount
		row.Interval = &interval
		row.IntervalCount = &intervalCount
		row.TrialPeriodDays = price.Recurring.TrialPeriodDays
	}

	return row
}

func metadataMap(metadata map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}
