package stripe

import "encoding/json"

// ExpandableID is a reference field that the provider serializes either
// as a bare id string or, when expansion was requested, as the full
// object. Decoding keeps track of which form was on the wire.
type ExpandableID struct {
	ID       string
	Expanded bool
}

func (e *ExpandableID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &e.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.ID = obj.ID
	e.Expanded = true
	return nil
}

// Product is the provider's product object as delivered in webhook payloads.
type Product struct {
	ID          string            `json:"id"`
	Active      bool              `json:"active"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Images      []string          `json:"images"`
	Metadata    map[string]string `json:"metadata"`
}

// Recurring carries the recurring portion of a price.
type Recurring struct {
	Interval        string `json:"interval"`
	IntervalCount   int64  `json:"interval_count"`
	TrialPeriodDays *int64 `json:"trial_period_days"`
}

// Price is the provider's price object.
type Price struct {
	ID         string            `json:"id"`
	Product    ExpandableID      `json:"product"`
	Active     bool              `json:"active"`
	Currency   string            `json:"currency"`
	Nickname   *string           `json:"nickname"`
	Type       string            `json:"type"`
	UnitAmount *int64            `json:"unit_amount"`
	Recurring  *Recurring        `json:"recurring"`
	Metadata   map[string]string `json:"metadata"`
}

const (
	PriceTypeOneTime   = "one_time"
	PriceTypeRecurring = "recurring"
)

// Address is a structured billing address.
type Address struct {
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
}

// BillingDetails is the billing contact attached to a payment method.
type BillingDetails struct {
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address"`
}

// PaymentMethod is an expanded payment method object. Details holds the
// raw per-type section (card, sepa_debit, ...) keyed by Type, so the
// snapshot stored on the user profile keeps the provider's shape.
type PaymentMethod struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Customer       ExpandableID   `json:"customer"`
	BillingDetails BillingDetails `json:"billing_details"`

	Details map[string]any `json:"-"`
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	type alias PaymentMethod
	var pm alias
	if err := json.Unmarshal(data, &pm); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields[pm.Type]; ok {
		var details map[string]any
		if err := json.Unmarshal(raw, &details); err == nil {
			pm.Details = details
		}
	}

	*p = PaymentMethod(pm)
	return nil
}

// PaymentMethodRef is the subscription's default payment method: a bare
// id unless expansion was requested, in which case the full object.
type PaymentMethodRef struct {
	ID            string
	Expanded      bool
	PaymentMethod *PaymentMethod
}

func (r *PaymentMethodRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var pm PaymentMethod
	if err := json.Unmarshal(data, &pm); err != nil {
		return err
	}
	r.ID = pm.ID
	r.Expanded = true
	r.PaymentMethod = &pm
	return nil
}

// SubscriptionItem is one line of a subscription.
type SubscriptionItem struct {
	ID       string `json:"id"`
	Price    Price  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// SubscriptionItemList wraps the provider's list envelope.
type SubscriptionItemList struct {
	Data []SubscriptionItem `json:"data"`
}

// Subscription is the provider's subscription object.
type Subscription struct {
	ID                   string               `json:"id"`
	Customer             ExpandableID         `json:"customer"`
	Status               string               `json:"status"`
	Metadata             map[string]string    `json:"metadata"`
	Items                SubscriptionItemList `json:"items"`
	Quantity             int64                `json:"quantity"`
	CancelAtPeriodEnd    bool                 `json:"cancel_at_period_end"`
	CancelAt             int64                `json:"cancel_at"`
	CanceledAt           int64                `json:"canceled_at"`
	CurrentPeriodStart   int64                `json:"current_period_start"`
	CurrentPeriodEnd     int64                `json:"current_period_end"`
	Created              int64                `json:"created"`
	EndedAt              int64                `json:"ended_at"`
	TrialStart           int64                `json:"trial_start"`
	TrialEnd             int64                `json:"trial_end"`
	DefaultPaymentMethod PaymentMethodRef     `json:"default_payment_method"`
}

// Customer is the provider's customer object.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutSession is the provider's checkout session object.
type CheckoutSession struct {
	ID           string       `json:"id"`
	Mode         string       `json:"mode"`
	URL          string       `json:"url"`
	Customer     ExpandableID `json:"customer"`
	Subscription ExpandableID `json:"subscription"`
}

const CheckoutModeSubscription = "subscription"

// Event is the webhook event envelope.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

// EventData wraps the event's inner object.
type EventData struct {
	Object json.RawMessage `json:"object"`
}
