package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/subsync/internal/stripe"
)

type Service interface {
	UpsertFromEvent(ctx context.Context, product stripe.Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
)
