package stripegw

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

func newSim() *SimulatedClient {
	return NewSimulatedClient("", zap.NewNop().Sugar())
}

func TestSimulatedClient_SessionLifecycle(t *testing.T) {
	c := newSim()
	sess, err := c.CreateCheckoutSession(context.Background(), &CheckoutParams{
		Name:        "Invoice INV-1",
		AmountCents: 9999,
		Currency:    "usd",
		Metadata:    map[string]string{"invoiceId": "inv-1"},
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sess.ID, SessionIDPrefix))
	require.Equal(t, stripe.CheckoutSessionPaymentStatusUnpaid, sess.PaymentStatus)

	got, err := c.GetCheckoutSession(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9999), got.AmountTotal)
	require.Equal(t, "inv-1", got.Metadata["invoiceId"])

	done, ok := c.CompletePayment(sess.ID)
	require.True(t, ok)
	require.Equal(t, stripe.CheckoutSessionStatusComplete, done.Status)
	require.Equal(t, stripe.CheckoutSessionPaymentStatusPaid, done.PaymentStatus)
}

func TestSimulatedClient_UnknownSession(t *testing.T) {
	c := newSim()
	_, err := c.GetCheckoutSession(context.Background(), "cs_sim_missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, ok := c.CompletePayment("cs_sim_missing")
	require.False(t, ok)
}

func TestSimulatedClient_ConstructEvent(t *testing.T) {
	c := newSim()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, SimulatedWebhookSecret)
	header := fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))

	event, err := c.ConstructEvent(payload, header)
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, stripe.EventTypeCheckoutSessionCompleted, event.Type)

	_, err = c.ConstructEvent(payload, fmt.Sprintf("t=%d,v1=deadbeef", ts.Unix()))
	require.ErrorIs(t, err, ErrSignature)

	_, err = c.ConstructEvent([]byte(`{"id":"evt_2"}`), header)
	require.ErrorIs(t, err, ErrSignature)
}
