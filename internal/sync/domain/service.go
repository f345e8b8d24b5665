package domain

import (
	"context"
	"errors"
)

var (
	// ErrEventIgnored marks an event type outside the subscribed set.
	// The webhook handler still acknowledges it.
	ErrEventIgnored = errors.New("event_ignored")

	// ErrEventAlreadyProcessed marks a redelivery of an event that has
	// already been handled to completion.
	ErrEventAlreadyProcessed = errors.New("event_already_processed")

	ErrInvalidPayload = errors.New("invalid_payload")
	ErrInvalidEvent   = errors.New("invalid_event")
)

// Dispatcher routes a raw webhook body to the handler for its event type.
type Dispatcher interface {
	Dispatch(ctx context.Context, provider string, body []byte) error
}
