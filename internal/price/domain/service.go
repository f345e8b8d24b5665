package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/subsync/internal/stripe"
)

type Service interface {
	UpsertFromEvent(ctx context.Context, price stripe.Price) (Price, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
)
