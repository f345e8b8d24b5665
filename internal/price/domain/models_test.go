package domain

import (
	"encoding/json"
	"testing"

	"github.com/smallbiznis/subsync/internal/stripe"
)

func TestMapPriceRecurring(t *testing.T) {
	nickname := "Monthly"
	amount := int64(1500)
	trialDays := int64(14)

	row := MapPrice(stripe.Price{
		ID:       "price_1",
		Product:  stripe.ExpandableID{ID: "prod_1"},
		Active:   true,
		Currency: "usd",
		Nickname: &nickname,
		Type:     stripe.PriceTypeRecurring,
		UnitAmount: &amount,
		Recurring: &stripe.Recurring{
			Interval:        "month",
			IntervalCount:   1,
			TrialPeriodDays: &trialDays,
		},
	})

	if row.ProductID != "prod_1" {
		t.Fatalf("expected prod_1, got %q", row.ProductID)
	}
	if row.Description == nil || *row.Description != "Monthly" {
		t.Fatalf("expected nickname as description, got %v", row.Description)
	}
	if row.Interval == nil || *row.Interval != "month" {
		t.Fatalf("expected month interval, got %v", row.Interval)
	}
	if row.IntervalCount == nil || *row.IntervalCount != 1 {
		t.Fatalf("expected interval count 1, got %v", row.IntervalCount)
	}
	if row.TrialPeriodDays == nil || *row.TrialPeriodDays != 14 {
		t.Fatalf("expected 14 trial days, got %v", row.TrialPeriodDays)
	}
}

func TestMapPriceOneTime(t *testing.T) {
	row := MapPrice(stripe.Price{
		ID:       "price_2",
		Product:  stripe.ExpandableID{ID: "prod_1"},
		Currency: "usd",
		Type:     stripe.PriceTypeOneTime,
	})

	if row.Interval != nil || row.IntervalCount != nil || row.TrialPeriodDays != nil {
		t.Fatalf("expected recurring fields to stay nil: %+v", row)
	}
	if row.UnitAmount != nil {
		t.Fatalf("expected nil unit amount, got %v", row.UnitAmount)
	}
}

func TestMapPriceExpandedProduct(t *testing.T) {
	// A payload delivered with an expanded product object carries no
	// usable reference; the stored product id is left empty.
	var price stripe.Price
	payload := []byte(`{
		"id": "price_3",
		"product": {"id": "prod_9", "name": "Pro"},
		"active": true,
		"currency": "usd",
		"type": "one_time"
	}`)
	if err := json.Unmarshal(payload, &price); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !price.Product.Expanded {
		t.Fatal("expected expanded product reference")
	}

	row := MapPrice(price)
	if row.ProductID != "" {
		t.Fatalf("expected empty product id, got %q", row.ProductID)
	}
}
