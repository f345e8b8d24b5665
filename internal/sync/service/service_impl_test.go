package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subsync/internal/config"
	pricerepo "github.com/smallbiznis/subsync/internal/price/repository"
	priceservice "github.com/smallbiznis/subsync/internal/price/service"
	productrepo "github.com/smallbiznis/subsync/internal/product/repository"
	productservice "github.com/smallbiznis/subsync/internal/product/service"
	subscriptiondomain "github.com/smallbiznis/subsync/internal/subscription/domain"
	"github.com/smallbiznis/subsync/internal/sync/domain"
	"github.com/smallbiznis/subsync/internal/sync/repository"
	"github.com/smallbiznis/subsync/internal/sync/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSubscriptionService struct {
	calls []subscriptiondomain.StatusChangeRequest
	err   error
}

func (s *stubSubscriptionService) ManageStatusChange(ctx context.Context, req subscriptiondomain.StatusChangeRequest) error {
	s.calls = append(s.calls, req)
	return s.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			name TEXT NOT NULL,
			description TEXT,
			image TEXT,
			metadata TEXT
		)`,
		`CREATE TABLE prices (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			currency TEXT NOT NULL,
			description TEXT,
			type TEXT NOT NULL,
			unit_amount BIGINT,
			interval TEXT,
			interval_count BIGINT,
			trial_period_days BIGINT,
			metadata TEXT
		)`,
		`CREATE TABLE webhook_events (
			id BIGINT PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			received_at TIMESTAMPTZ NOT NULL,
			processed_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX ux_webhook_events_provider_event ON webhook_events(provider, provider_event_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newDispatcher(t *testing.T, db *gorm.DB, subscriptions subscriptiondomain.Service) domain.Dispatcher {
	t.Helper()

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return service.New(service.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		SyncConfig: config.NewStaticSyncConfigHolder(config.DefaultSyncConfig()),
		Products: productservice.New(productservice.Params{
			DB:   db,
			Log:  zap.NewNop(),
			Repo: productrepo.Provide(),
		}),
		Prices: priceservice.New(priceservice.Params{
			DB:   db,
			Log:  zap.NewNop(),
			Repo: pricerepo.Provide(),
		}),
		Subscriptions: subscriptions,
	})
}

func TestDispatchProductCreated(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dispatcher := newDispatcher(t, db, &stubSubscriptionService{})

	body := []byte(`{
		"id": "evt_1",
		"type": "product.created",
		"created": 1700000000,
		"data": {"object": {"id": "prod_1", "active": true, "name": "Pro"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	stored, err := productrepo.Provide().FindByID(ctx, db, "prod_1")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if stored == nil || stored.Name != "Pro" {
		t.Fatalf("expected synced product, got %+v", stored)
	}

	record, err := repository.Provide().FindByProviderEventID(ctx, db, "stripe", "evt_1")
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if record == nil || record.ProcessedAt == nil {
		t.Fatalf("expected processed event record, got %+v", record)
	}
}

func TestDispatchProductDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dispatcher := newDispatcher(t, db, &stubSubscriptionService{})

	if err := db.Exec(
		`INSERT INTO products (id, active, name) VALUES (?, ?, ?)`,
		"prod_9", true, "Legacy",
	).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	body := []byte(`{
		"id": "evt_2",
		"type": "product.deleted",
		"created": 1700000000,
		"data": {"object": {"id": "prod_9"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	stored, err := productrepo.Provide().FindByID(ctx, db, "prod_9")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if stored != nil {
		t.Fatalf("expected product removed, got %+v", stored)
	}
}

func TestDispatchDuplicateEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dispatcher := newDispatcher(t, db, &stubSubscriptionService{})

	body := []byte(`{
		"id": "evt_3",
		"type": "price.created",
		"created": 1700000000,
		"data": {"object": {"id": "price_1", "product": "prod_1", "active": true, "currency": "usd", "type": "one_time"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	err := dispatcher.Dispatch(ctx, "stripe", body)
	if !errors.Is(err, domain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM webhook_events`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one event record, got %d", count)
	}
}

func TestDispatchRetriesAfterFailedDelivery(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	stub := &stubSubscriptionService{err: errors.New("provider unavailable")}
	dispatcher := newDispatcher(t, db, stub)

	body := []byte(`{
		"id": "evt_4",
		"type": "customer.subscription.updated",
		"created": 1700000000,
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "active"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err == nil {
		t.Fatal("expected handler failure")
	}

	// The retry after the provider recovers runs the handler again
	// against the original event record.
	stub.err = nil
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("retry dispatch: %v", err)
	}
	if len(stub.calls) != 2 {
		t.Fatalf("expected two handler calls, got %d", len(stub.calls))
	}

	record, err := repository.Provide().FindByProviderEventID(ctx, db, "stripe", "evt_4")
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if record == nil || record.ProcessedAt == nil {
		t.Fatalf("expected processed record, got %+v", record)
	}
}

func TestDispatchSubscriptionEvents(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	stub := &stubSubscriptionService{}
	dispatcher := newDispatcher(t, db, stub)

	body := []byte(`{
		"id": "evt_5",
		"type": "customer.subscription.created",
		"created": 1700000000,
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "trialing"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(stub.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(stub.calls))
	}
	call := stub.calls[0]
	if call.SubscriptionID != "sub_1" || call.CustomerID != "cus_1" || !call.CreateAction {
		t.Fatalf("unexpected request: %+v", call)
	}
}

func TestDispatchCheckoutSessionCompleted(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	stub := &stubSubscriptionService{}
	dispatcher := newDispatcher(t, db, stub)

	body := []byte(`{
		"id": "evt_6",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {"id": "cs_1", "mode": "subscription", "customer": "cus_1", "subscription": "sub_1"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(stub.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(stub.calls))
	}
	call := stub.calls[0]
	if call.SubscriptionID != "sub_1" || call.CustomerID != "cus_1" || !call.CreateAction {
		t.Fatalf("unexpected request: %+v", call)
	}
}

func TestDispatchCheckoutSessionPaymentMode(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	stub := &stubSubscriptionService{}
	dispatcher := newDispatcher(t, db, stub)

	body := []byte(`{
		"id": "evt_7",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {"id": "cs_2", "mode": "payment", "customer": "cus_1"}}
	}`)
	if err := dispatcher.Dispatch(ctx, "stripe", body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no subscription calls, got %d", len(stub.calls))
	}
}

func TestDispatchUnsubscribedEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dispatcher := newDispatcher(t, db, &stubSubscriptionService{})

	body := []byte(`{
		"id": "evt_8",
		"type": "invoice.paid",
		"created": 1700000000,
		"data": {"object": {"id": "in_1"}}
	}`)
	err := dispatcher.Dispatch(ctx, "stripe", body)
	if !errors.Is(err, domain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM webhook_events`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no event records, got %d", count)
	}
}

func TestDispatchInvalidPayload(t *testing.T) {
	db := setupTestDB(t)
	dispatcher := newDispatcher(t, db, &stubSubscriptionService{})

	if err := dispatcher.Dispatch(context.Background(), "stripe", []byte(`{"id":`)); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if err := dispatcher.Dispatch(context.Background(), "stripe", []byte(`{"id": "evt_9"}`)); !errors.Is(err, domain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}
