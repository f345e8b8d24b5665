package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallbiznis/subsync/internal/config"
	customerdomain "github.com/smallbiznis/subsync/internal/customer/domain"
	customerrepo "github.com/smallbiznis/subsync/internal/customer/repository"
	"github.com/smallbiznis/subsync/internal/stripe"
	"github.com/smallbiznis/subsync/internal/subscription/domain"
	"github.com/smallbiznis/subsync/internal/subscription/repository"
	"github.com/smallbiznis/subsync/internal/subscription/service"
	userrepo "github.com/smallbiznis/subsync/internal/user/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE customers (
			id TEXT PRIMARY KEY,
			stripe_customer_id TEXT NOT NULL
		)`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			billing_address TEXT,
			payment_method TEXT
		)`,
		`CREATE TABLE subscriptions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			metadata TEXT,
			price_id TEXT NOT NULL,
			quantity BIGINT,
			cancel_at_period_end BOOLEAN NOT NULL DEFAULT FALSE,
			created TIMESTAMPTZ NOT NULL,
			current_period_start TIMESTAMPTZ NOT NULL,
			current_period_end TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			cancel_at TIMESTAMPTZ,
			canceled_at TIMESTAMPTZ,
			trial_start TIMESTAMPTZ,
			trial_end TIMESTAMPTZ
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedMapping(t *testing.T, db *gorm.DB, userID, customerID string) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO customers (id, stripe_customer_id) VALUES (?, ?)`,
		userID, customerID,
	).Error; err != nil {
		t.Fatalf("seed mapping: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO users (id) VALUES (?)`, userID,
	).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

const subscriptionBody = `{
	"id": "sub_1",
	"customer": "cus_1",
	"status": "active",
	"metadata": {"plan": "pro"},
	"items": {"data": [{"id": "si_1", "price": {"id": "price_1", "type": "recurring"}, "quantity": 1}]},
	"quantity": 1,
	"cancel_at_period_end": false,
	"created": 1700000000,
	"current_period_start": 1700000000,
	"current_period_end": 1702592000,
	"default_payment_method": %s
}`

type providerCalls struct {
	customerUpdates int
}

func newProvider(t *testing.T, paymentMethod string, calls *providerCalls) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/subscriptions/sub_1":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, subscriptionBody, paymentMethod)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/customers/cus_1":
			calls.customerUpdates++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "cus_1"}`)
		default:
			t.Errorf("unexpected provider call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newService(db *gorm.DB, baseURL string) domain.Service {
	return service.New(service.Params{
		DB:           db,
		Log:          zap.NewNop(),
		Repo:         repository.Provide(),
		CustomerRepo: customerrepo.Provide(),
		UserRepo:     userrepo.Provide(),
		Stripe: stripe.NewClient(config.Config{
			StripeAPIKey:  "sk_test_123",
			StripeAPIBase: baseURL,
		}),
	})
}

func TestManageStatusChangeUpsertsRow(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedMapping(t, db, "user_1", "cus_1")

	calls := &providerCalls{}
	provider := newProvider(t, `"pm_1"`, calls)
	defer provider.Close()

	svc := newService(db, provider.URL)
	err := svc.ManageStatusChange(ctx, domain.StatusChangeRequest{
		SubscriptionID: "sub_1",
		CustomerID:     "cus_1",
	})
	if err != nil {
		t.Fatalf("manage status change: %v", err)
	}

	stored, err := repository.Provide().FindByID(ctx, db, "sub_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored subscription")
	}
	if stored.UserID != "user_1" || stored.Status != domain.SubscriptionStatusActive {
		t.Fatalf("unexpected row: %+v", stored)
	}
	if stored.PriceID != "price_1" {
		t.Fatalf("expected price_1, got %q", stored.PriceID)
	}
	if calls.customerUpdates != 0 {
		t.Fatalf("expected no customer updates, got %d", calls.customerUpdates)
	}
}

func TestManageStatusChangeCopiesBillingDetails(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedMapping(t, db, "user_1", "cus_1")

	paymentMethod := `{
		"id": "pm_1",
		"type": "card",
		"customer": "cus_1",
		"billing_details": {
			"name": "Ada Lovelace",
			"phone": "+15550100",
			"address": {"city": "London", "country": "GB", "line1": "1 Crescent", "postal_code": "N1", "state": ""}
		},
		"card": {"brand": "visa", "last4": "4242"}
	}`

	calls := &providerCalls{}
	provider := newProvider(t, paymentMethod, calls)
	defer provider.Close()

	svc := newService(db, provider.URL)
	err := svc.ManageStatusChange(ctx, domain.StatusChangeRequest{
		SubscriptionID: "sub_1",
		CustomerID:     "cus_1",
		CreateAction:   true,
	})
	if err != nil {
		t.Fatalf("manage status change: %v", err)
	}
	if calls.customerUpdates != 1 {
		t.Fatalf("expected one customer update, got %d", calls.customerUpdates)
	}

	var billingAddress, storedPaymentMethod *string
	row := db.Raw(`SELECT billing_address, payment_method FROM users WHERE id = ?`, "user_1").Row()
	if err := row.Scan(&billingAddress, &storedPaymentMethod); err != nil {
		t.Fatalf("scan user: %v", err)
	}
	if billingAddress == nil || storedPaymentMethod == nil {
		t.Fatal("expected billing details on user row")
	}
}

func TestManageStatusChangeSkipsIncompleteBillingDetails(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedMapping(t, db, "user_1", "cus_1")

	// No phone on file; the copy-back is skipped without error.
	paymentMethod := `{
		"id": "pm_1",
		"type": "card",
		"customer": "cus_1",
		"billing_details": {
			"name": "Ada Lovelace",
			"phone": "",
			"address": {"city": "London", "country": "GB", "line1": "1 Crescent"}
		}
	}`

	calls := &providerCalls{}
	provider := newProvider(t, paymentMethod, calls)
	defer provider.Close()

	svc := newService(db, provider.URL)
	err := svc.ManageStatusChange(ctx, domain.StatusChangeRequest{
		SubscriptionID: "sub_1",
		CustomerID:     "cus_1",
		CreateAction:   true,
	})
	if err != nil {
		t.Fatalf("manage status change: %v", err)
	}
	if calls.customerUpdates != 0 {
		t.Fatalf("expected no customer updates, got %d", calls.customerUpdates)
	}

	stored, err := repository.Provide().FindByID(ctx, db, "sub_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored == nil {
		t.Fatal("expected subscription row despite skipped copy-back")
	}
}

func TestManageStatusChangeUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	calls := &providerCalls{}
	provider := newProvider(t, `"pm_1"`, calls)
	defer provider.Close()

	svc := newService(db, provider.URL)
	err := svc.ManageStatusChange(ctx, domain.StatusChangeRequest{
		SubscriptionID: "sub_1",
		CustomerID:     "cus_unknown",
	})
	if !errors.Is(err, customerdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManageStatusChangeInvalidRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, "http://127.0.0.1:0")

	if err := svc.ManageStatusChange(context.Background(), domain.StatusChangeRequest{CustomerID: "cus_1"}); err != domain.ErrInvalidSubscription {
		t.Fatalf("expected ErrInvalidSubscription, got %v", err)
	}
	if err := svc.ManageStatusChange(context.Background(), domain.StatusChangeRequest{SubscriptionID: "sub_1"}); err != domain.ErrInvalidCustomer {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}
