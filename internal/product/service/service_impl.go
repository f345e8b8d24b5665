package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/subsync/internal/product/domain"
	"github.com/smallbiznis/subsync/internal/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("product.service"),
		repo: p.Repo,
	}
}

func (s *Service) UpsertFromEvent(ctx context.Context, product stripe.Product) (domain.Product, error) {
	if strings.TrimSpace(product.ID) == "" {
		return domain.Product{}, domain.ErrInvalidID
	}

	row := domain.MapProduct(product)
	if err := s.repo.Upsert(ctx, s.db, &row); err != nil {
		return domain.Product{}, err
	}

	s.log.Debug("product upserted", zap.String("product_id", row.ID))
	return row, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.log.Debug("product deleted", zap.String("product_id", id))
	return nil
}
