package service

import (
	"context"
	"strings"

	customerdomain "github.com/smallbiznis/subsync/internal/customer/domain"
	"github.com/smallbiznis/subsync/internal/stripe"
	"github.com/smallbiznis/subsync/internal/subscription/domain"
	userdomain "github.com/smallbiznis/subsync/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	UserRepo     userdomain.Repository
	Stripe       *stripe.Client
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	customerRepo customerdomain.Repository
	userRepo     userdomain.Repository
	stripe       *stripe.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("subscription.service"),
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		userRepo:     p.UserRepo,
		stripe:       p.Stripe,
	}
}

// ManageStatusChange re-reads the subscription from the provider and
// replaces the stored row with what the provider returned. On the
// creation event it additionally copies the default payment method's
// billing contact back onto the provider customer and the local user.
func (s *Service) ManageStatusChange(ctx context.Context, req domain.StatusChangeRequest) error {
	if strings.TrimSpace(req.SubscriptionID) == "" {
		return domain.ErrInvalidSubscription
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		return domain.ErrInvalidCustomer
	}

	mapping, err := s.customerRepo.FindByProviderID(ctx, s.db, req.CustomerID)
	if err != nil {
		return err
	}
	if mapping == nil {
		return customerdomain.ErrNotFound
	}

	subscription, err := s.stripe.RetrieveSubscription(ctx, req.SubscriptionID, "default_payment_method")
	if err != nil {
		return err
	}

	row := domain.MapSubscription(*subscription, mapping.ID)
	if err := s.repo.Upsert(ctx, s.db, row); err != nil {
		return err
	}
	s.log.Info("subscription synced",
		zap.String("subscription_id", row.ID),
		zap.String("user_id", mapping.ID),
		zap.String("status", string(row.Status)),
	)

	if !req.CreateAction {
		return nil
	}
	return s.copyBillingDetails(ctx, mapping.ID, subscription)
}

// copyBillingDetails mirrors the expanded default payment method's
// contact information. A payment method without a complete name, phone
// and address is skipped without error.
func (s *Service) copyBillingDetails(ctx context.Context, userID string, subscription *stripe.Subscription) error {
	ref := subscription.DefaultPaymentMethod
	if !ref.Expanded || ref.PaymentMethod == nil {
		return nil
	}

	pm := ref.PaymentMethod
	billing := pm.BillingDetails
	if billing.Name == "" || billing.Phone == "" || billing.Address == nil {
		return nil
	}

	if _, err := s.stripe.UpdateCustomer(ctx, pm.Customer.ID, stripe.UpdateCustomerParams{
		Name:    billing.Name,
		Phone:   billing.Phone,
		Address: billing.Address,
	}); err != nil {
		return err
	}

	if err := s.userRepo.UpdateBillingDetails(ctx, s.db, userID,
		addressMap(billing.Address),
		paymentMethodMap(pm),
	); err != nil {
		return err
	}

	s.log.Info("billing details copied",
		zap.String("user_id", userID),
		zap.String("payment_method_id", pm.ID),
	)
	return nil
}

func addressMap(address *stripe.Address) datatypes.JSONMap {
	return datatypes.JSONMap{
		"city":        address.City,
		"country":     address.Country,
		"line1":       address.Line1,
		"line2":       address.Line2,
		"postal_code": address.PostalCode,
		"state":       address.State,
	}
}

func paymentMethodMap(pm *stripe.PaymentMethod) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range pm.Details {
		out[key] = value
	}
	return out
}
