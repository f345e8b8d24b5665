package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/subsync/internal/price/domain"
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
		log:  p.Log.Named("price.service"),
		repo: p.Repo,
	}
}

func (s *Service) UpsertFromEvent(ctx context.Context, price stripe.Price) (domain.Price, error) {
	if strings.TrimSpace(price.ID) == "" {
		return domain.Price{}, domain.ErrInvalidID
	}

	row := domain.MapPrice(price)
	if err := s.repo.Upsert(ctx, s.db, &row); err != nil {
		return domain.Price{}, err
	}

	s.log.Debug("price upserted",
		zap.String("price_id", row.ID),
		zap.String("product_id", row.ProductID),
	)
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

	s.log.Debug("price deleted", zap.String("price_id", id))
	return nil
}
