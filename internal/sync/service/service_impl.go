package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subsync/internal/config"
	"github.com/smallbiznis/subsync/internal/observability/metrics"
	pricedomain "github.com/smallbiznis/subsync/internal/price/domain"
	productdomain "github.com/smallbiznis/subsync/internal/product/domain"
	"github.com/smallbiznis/subsync/internal/stripe"
	subscriptiondomain "github.com/smallbiznis/subsync/internal/subscription/domain"
	"github.com/smallbiznis/subsync/internal/sync/domain"
	"github.com/smallbiznis/subsync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook event types handled by the dispatcher.
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventPriceCreated        = "price.created"
	EventPriceUpdated        = "price.updated"
	EventPriceDeleted        = "price.deleted"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventCheckoutCompleted   = "checkout.session.completed"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	SyncConfig    *config.SyncConfigHolder
	Metrics       *metrics.Metrics
	Products      productdomain.Service
	Prices        pricedomain.Service
	Subscriptions subscriptiondomain.Service
}

type Dispatcher struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	syncConfig    *config.SyncConfigHolder
	metrics       *metrics.Metrics
	products      productdomain.Service
	prices        pricedomain.Service
	subscriptions subscriptiondomain.Service
}

func New(p Params) domain.Dispatcher {
	return &Dispatcher{
		db:            p.DB,
		log:           p.Log.Named("sync.dispatcher"),
		genID:         p.GenID,
		repo:          p.Repo,
		syncConfig:    p.SyncConfig,
		metrics:       p.Metrics,
		products:      p.Products,
		prices:        p.Prices,
		subscriptions: p.Subscriptions,
	}
}

// Dispatch parses the raw webhook body, records the event once in the
// event log, and hands the inner object to the handler for its type.
// Unsubscribed event types and redeliveries of completed events return
// ErrEventIgnored and ErrEventAlreadyProcessed respectively; callers
// acknowledge both.
func (d *Dispatcher) Dispatch(ctx context.Context, provider string, body []byte) error {
	if !json.Valid(body) {
		return domain.ErrInvalidPayload
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" || event.Type == "" {
		return domain.ErrInvalidEvent
	}

	log := d.log.With(
		zap.String("provider", provider),
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	d.metrics.RecordProviderEvent(ctx, provider, event.Type)

	if !d.syncConfig.Subscribed(event.Type) {
		log.Debug("event type not subscribed")
		return domain.ErrEventIgnored
	}

	record := domain.EventRecord{
		ID:              d.genID.Generate().Int64(),
		Provider:        provider,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		Payload:         datatypes.JSON(body),
		ReceivedAt:      time.Now().UTC(),
	}
	if err := d.repo.Insert(ctx, d.db, &record); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		existing, ferr := d.repo.FindByProviderEventID(ctx, d.db, provider, event.ID)
		if ferr != nil {
			return ferr
		}
		if existing == nil {
			return err
		}
		if existing.ProcessedAt != nil {
			log.Debug("event already processed")
			return domain.ErrEventAlreadyProcessed
		}
		// Earlier delivery never completed; retry the handler against
		// the original record.
		record = *existing
	}

	if err := d.handle(ctx, event); err != nil {
		d.metrics.RecordSyncFailure(ctx, provider, event.Type)
		log.Error("event handling failed", zap.Error(err))
		return err
	}

	if err := d.repo.MarkProcessed(ctx, d.db, record.ID); err != nil {
		return err
	}
	log.Info("event processed")
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case EventProductCreated, EventProductUpdated:
		var product stripe.Product
		if err := json.Unmarshal(event.Data.Object, &product); err != nil {
			return domain.ErrInvalidPayload
		}
		_, err := d.products.UpsertFromEvent(ctx, product)
		return err

	case EventProductDeleted:
		var product stripe.Product
		if err := json.Unmarshal(event.Data.Object, &product); err != nil {
			return domain.ErrInvalidPayload
		}
		return d.products.Delete(ctx, product.ID)

	case EventPriceCreated, EventPriceUpdated:
		var price stripe.Price
		if err := json.Unmarshal(event.Data.Object, &price); err != nil {
			return domain.ErrInvalidPayload
		}
		_, err := d.prices.UpsertFromEvent(ctx, price)
		return err

	case EventPriceDeleted:
		var price stripe.Price
		if err := json.Unmarshal(event.Data.Object, &price); err != nil {
			return domain.ErrInvalidPayload
		}
		return d.prices.Delete(ctx, price.ID)

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Object, &subscription); err != nil {
			return domain.ErrInvalidPayload
		}
		return d.subscriptions.ManageStatusChange(ctx, subscriptiondomain.StatusChangeRequest{
			SubscriptionID: subscription.ID,
			CustomerID:     subscription.Customer.ID,
			CreateAction:   event.Type == EventSubscriptionCreated,
		})

	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return domain.ErrInvalidPayload
		}
		// One-time payment checkouts carry no subscription to sync.
		if session.Mode != stripe.CheckoutModeSubscription {
			return nil
		}
		return d.subscriptions.ManageStatusChange(ctx, subscriptiondomain.StatusChangeRequest{
			SubscriptionID: session.Subscription.ID,
			CustomerID:     session.Customer.ID,
			CreateAction:   true,
		})
	}

	return domain.ErrEventIgnored
}
