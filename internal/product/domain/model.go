package domain

import (
	"github.com/smallbiznis/subsync/internal/stripe"
	"gorm.io/datatypes"
)

// Product mirrors the provider's product catalog entry. The primary key
// is the provider-assigned id; rows are replaced wholesale on upsert.
type Product struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	Active      bool              `json:"active" gorm:"not null"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Image       *string           `json:"image,omitempty" gorm:"type:text"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
}

func (Product) TableName() string { return "products" }

// MapProduct projects a provider product payload onto the storage row.
// Absent description/image become explicit NULLs, never empty strings.
func MapProduct(product stripe.Product) Product {
	var image *string
	if len(product.Images) > 0 {
		image = &product.Images[0]
	}
	return Product{
		ID:          product.ID,
		Active:      product.Active,
		Name:        product.Name,
		Description: product.Description,
		Image:       image,
		Metadata:    metadataMap(product.Metadata),
	}
}

func metadataMap(metadata map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}
