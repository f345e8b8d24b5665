package domain

import (
	"context"
	"errors"
)

type Service interface {
	// CreateOrRetrieve returns the provider customer id mapped to the
	// given local user, creating the provider customer and the mapping
	// row when none exists yet.
	CreateOrRetrieve(ctx context.Context, email, userID string) (string, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrNotFound    = errors.New("customer_mapping_not_found")
)
