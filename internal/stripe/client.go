package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/subsync/internal/config"
)

const defaultAPIBase = "https://api.stripe.com"

var (
	ErrMissingAPIKey = errors.New("stripe_api_key_missing")
)

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a thin form-encoded client for the provider API surface
// this service needs: customers, subscriptions, checkout sessions.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.Config) *Client {
	base := strings.TrimSpace(cfg.StripeAPIBase)
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.StripeAPIKey),
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// CreateCustomerParams creates a provider-side customer. The local user
// id travels in metadata so the mapping stays traceable from either side.
type CreateCustomerParams struct {
	Email    string
	Metadata map[string]string
}

func (c *Client) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	values := url.Values{}
	if email := strings.TrimSpace(params.Email); email != "" {
		values.Set("email", email)
	}
	for key, value := range params.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	var customer Customer
	if err := c.doRequest(ctx, http.MethodPost, "/v1/customers", values, &customer); err != nil {
		return nil, err
	}
	if customer.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &customer, nil
}

// RetrieveSubscription fetches the authoritative subscription state,
// optionally expanding referenced objects.
func (c *Client) RetrieveSubscription(ctx context.Context, id string, expand ...string) (*Subscription, error) {
	values := url.Values{}
	for _, field := range expand {
		values.Add("expand[]", field)
	}

	var subscription Subscription
	if err := c.doRequest(ctx, http.MethodGet, "/v1/subscriptions/"+id, values, &subscription); err != nil {
		return nil, err
	}
	if subscription.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &subscription, nil
}

// UpdateCustomerParams carries the billing contact pushed back onto the
// provider customer record.
type UpdateCustomerParams struct {
	Name    string
	Phone   string
	Address *Address
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, params UpdateCustomerParams) (*Customer, error) {
	values := url.Values{}
	if params.Name != "" {
		values.Set("name", params.Name)
	}
	if params.Phone != "" {
		values.Set("phone", params.Phone)
	}
	if params.Address != nil {
		setAddress(values, "address", params.Address)
	}

	var customer Customer
	if err := c.doRequest(ctx, http.MethodPost, "/v1/customers/"+id, values, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCheckoutSessionParams opens a hosted checkout for one price.
type CreateCheckoutSessionParams struct {
	CustomerID      string
	PriceID         string
	Quantity        int64
	SuccessURL      string
	CancelURL       string
	TrialPeriodDays int64
	Metadata        map[string]string
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	values := url.Values{}
	values.Set("mode", CheckoutModeSubscription)
	values.Set("customer", params.CustomerID)
	values.Set("payment_method_collection", "always")
	values.Set("line_items[0][price]", params.PriceID)
	values.Set("line_items[0][quantity]", strconv.FormatInt(quantity, 10))
	values.Set("success_url", params.SuccessURL)
	values.Set("cancel_url", params.CancelURL)
	if params.TrialPeriodDays > 0 {
		values.Set("subscription_data[trial_period_days]", strconv.FormatInt(params.TrialPeriodDays, 10))
	}
	for key, value := range params.Metadata {
		values.Set("subscription_data[metadata]["+key+"]", value)
	}

	var session CheckoutSession
	if err := c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, &session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &session, nil
}

func setAddress(values url.Values, prefix string, address *Address) {
	set := func(field, value string) {
		if value != "" {
			values.Set(prefix+"["+field+"]", value)
		}
	}
	set("city", address.City)
	set("country", address.Country)
	set("line1", address.Line1)
	set("line2", address.Line2)
	set("postal_code", address.PostalCode)
	set("state", address.State)
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	endpoint := c.baseURL + path
	body := strings.NewReader("")
	if values != nil {
		if method == http.MethodGet {
			if encoded := values.Encode(); encoded != "" {
				endpoint += "?" + encoded
			}
		} else {
			body = strings.NewReader(values.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return errors.New(message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
