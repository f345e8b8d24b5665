package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidSubscription = errors.New("invalid_subscription_id")
	ErrInvalidCustomer     = errors.New("invalid_customer_id")
)

// StatusChangeRequest carries the identifiers extracted from a
// subscription lifecycle event.
type StatusChangeRequest struct {
	SubscriptionID string
	CustomerID     string

	// CreateAction marks the initial creation event, which additionally
	// copies billing details back onto the customer and local user.
	CreateAction bool
}

// Service reconciles a provider subscription into local storage.
type Service interface {
	ManageStatusChange(ctx context.Context, req StatusChangeRequest) error
}
