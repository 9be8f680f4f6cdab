package stripegw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// SessionIDPrefix is the gateway's checkout-session id convention. Ids not
// carrying it are rejected before any API call.
const SessionIDPrefix = "cs_"

var (
	// ErrSessionNotFound is returned when the gateway does not know the
	// session id.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrSignature is returned when a webhook payload cannot be verified
	// against the shared secret.
	ErrSignature = errors.New("webhook signature verification failed")
)

// CheckoutParams describes the single-line-item session opened for an invoice.
type CheckoutParams struct {
	Name          string
	Description   string
	AmountCents   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
}

// Client is the typed wrapper over the checkout gateway. The production
// implementation talks to Stripe; the simulated one keeps sessions in memory.
type Client interface {
	// CreateCheckoutSession opens a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*stripe.CheckoutSession, error)
	// GetCheckoutSession retrieves a session with line items expanded.
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	// ConstructEvent verifies the signature header against the exact raw
	// payload and parses the event.
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type stripeClient struct {
	api           *stripeclient.API
	webhookSecret string
	log           *zap.SugaredLogger
}

// NewStripeClient builds the production gateway client.
func NewStripeClient(secretKey, webhookSecret string, log *zap.SugaredLogger) Client {
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &stripeClient{api: api, webhookSecret: webhookSecret, log: log}
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*stripe.CheckoutSession, error) {
	p := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		ExpiresAt:  stripe.Int64(params.ExpiresAt.Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(params.Name),
						Description: stripe.String(params.Description),
					},
				},
			},
		},
	}
	p.Context = ctx
	if params.CustomerEmail != "" {
		p.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}

func (c *stripeClient) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	p := &stripe.CheckoutSessionParams{}
	p.Context = ctx
	p.AddExpand("line_items")

	sess, err := c.api.CheckoutSessions.Get(id, p)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	return sess, nil
}

func (c *stripeClient) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return event, nil
}
