package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/subsync/internal/customer/domain"
	"github.com/smallbiznis/subsync/internal/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Stripe *stripe.Client
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	stripe *stripe.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("customer.service"),
		repo:   p.Repo,
		stripe: p.Stripe,
	}
}

func (s *Service) CreateOrRetrieve(ctx context.Context, email, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrInvalidUser
	}

	// A failed read is a failed read; creation is triggered only by
	// genuine absence of the mapping row.
	existing, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.StripeCustomerID != "" {
		return existing.StripeCustomerID, nil
	}

	created, err := s.stripe.CreateCustomer(ctx, stripe.CreateCustomerParams{
		Email:    strings.TrimSpace(email),
		Metadata: map[string]string{"user_id": userID},
	})
	if err != nil {
		return "", err
	}

	mapping := domain.Customer{
		ID:               userID,
		StripeCustomerID: created.ID,
	}
	if err := s.repo.Save(ctx, s.db, &mapping); err != nil {
		return "", err
	}

	s.log.Info("provider customer created",
		zap.String("user_id", userID),
		zap.String("customer_id", created.ID),
	)
	return created.ID, nil
}
