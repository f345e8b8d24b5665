package domain

// Customer maps a local user identity to the provider-side customer id.
// Created at most once per user and read-mostly afterward.
type Customer struct {
	ID               string `json:"id" gorm:"primaryKey"`
	StripeCustomerID string `json:"stripe_customer_id" gorm:"type:text;not null"`
}

func (Customer) TableName() string { return "customers" }
