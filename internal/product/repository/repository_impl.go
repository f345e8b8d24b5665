package repository

import (
	"context"

	"github.com/smallbiznis/subsync/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, active, name, description, image, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   active = excluded.active,
		   name = excluded.name,
		   description = excluded.description,
		   image = excluded.image,
		   metadata = excluded.metadata`,
		product.ID,
		product.Active,
		product.Name,
		product.Description,
		product.Image,
		product.Metadata,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE id = ?`,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, active, name, description, image, metadata
		 FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == "" {
		return nil, nil
	}
	return &product, nil
}
