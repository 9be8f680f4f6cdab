package stripegw

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/lumabill/biller/pkg/tool"
)

// SimulatedWebhookSecret signs and verifies webhook payloads when no real
// gateway secret is configured, so the settlement path stays exercisable in
// non-production environments.
const SimulatedWebhookSecret = "whsec_simulated"

// SimulatedClient is a deterministic in-memory stand-in for the gateway,
// selected when no secret key is configured. Webhook verification uses the
// same signature scheme as the real gateway.
type SimulatedClient struct {
	mu            sync.Mutex
	sessions      map[string]*stripe.CheckoutSession
	webhookSecret string
	log           *zap.SugaredLogger
}

func NewSimulatedClient(webhookSecret string, log *zap.SugaredLogger) *SimulatedClient {
	if webhookSecret == "" {
		webhookSecret = SimulatedWebhookSecret
	}
	return &SimulatedClient{
		sessions:      make(map[string]*stripe.CheckoutSession),
		webhookSecret: webhookSecret,
		log:           log,
	}
}

func (c *SimulatedClient) CreateCheckoutSession(_ context.Context, params *CheckoutParams) (*stripe.CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := "cs_sim_" + tool.GenerateUUIDV7()
	sess := &stripe.CheckoutSession{
		ID:            id,
		URL:           fmt.Sprintf("https://checkout.simulated.local/pay/%s", id),
		Status:        stripe.CheckoutSessionStatusOpen,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		AmountTotal:   params.AmountCents,
		Currency:      stripe.Currency(params.Currency),
		Metadata:      params.Metadata,
		Created:       time.Now().Unix(),
		ExpiresAt:     params.ExpiresAt.Unix(),
		LineItems: &stripe.LineItemList{
			Data: []*stripe.LineItem{
				{
					AmountTotal: params.AmountCents,
					Currency:    stripe.Currency(params.Currency),
					Description: params.Description,
					Quantity:    1,
				},
			},
		},
	}
	c.sessions[id] = sess
	c.log.Infow("simulated checkout session created", "session_id", id, "amount_cents", params.AmountCents)
	return sess, nil
}

func (c *SimulatedClient) GetCheckoutSession(_ context.Context, id string) (*stripe.CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (c *SimulatedClient) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return event, nil
}

// CompletePayment marks a simulated session as paid. Used by dev tooling and
// tests to drive the settlement flow without the hosted checkout.
func (c *SimulatedClient) CompletePayment(id string) (*stripe.CheckoutSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[id]
	if !ok {
		return nil, false
	}
	sess.Status = stripe.CheckoutSessionStatusComplete
	sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusPaid
	return sess, true
}
