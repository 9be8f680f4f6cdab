package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumabill/biller/internal/models"
	"github.com/lumabill/biller/internal/platform/stripegw"
	cfgpkg "github.com/lumabill/biller/pkg/config"
	"github.com/lumabill/biller/pkg/tool"
	"github.com/lumabill/biller/pkg/types"
)

type stubGateway struct {
	created *stripegw.CheckoutParams
	getSess *stripe.CheckoutSession
	getErr  error
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, params *stripegw.CheckoutParams) (*stripe.CheckoutSession, error) {
	g.created = params
	return &stripe.CheckoutSession{
		ID:          "cs_test_1",
		URL:         "https://checkout.example.com/pay/cs_test_1",
		ExpiresAt:   params.ExpiresAt.Unix(),
		Created:     time.Now().Unix(),
		AmountTotal: params.AmountCents,
		Currency:    stripe.Currency(params.Currency),
		Metadata:    params.Metadata,
	}, nil
}

func (g *stubGateway) GetCheckoutSession(_ context.Context, _ string) (*stripe.CheckoutSession, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.getSess, nil
}

func (g *stubGateway) ConstructEvent(_ []byte, _ string) (stripe.Event, error) {
	return stripe.Event{}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Invoice{},
		&models.Payment{},
		&models.Notification{},
		&models.WebhookEventLog{},
	))
	return db
}

func testConfig() *cfgpkg.Config {
	return &cfgpkg.Config{
		Currency: "usd",
		Stripe: cfgpkg.StripeConfig{
			SuccessURL: "https://app.example.com/checkout/success",
			CancelURL:  "https://app.example.com/checkout/cancel",
		},
	}
}

func seedInvoice(t *testing.T, db *gorm.DB, status types.InvoiceStatus, dueAt *time.Time) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		ID:            tool.GenerateUUIDV7(),
		InvoiceNumber: "INV-2026-0042",
		IssuerID:      "issuer-1",
		DebtorID:      "debtor-1",
		Subject:       "Consulting services, July",
		Amount:        decimal.NewFromFloat(99.99),
		Status:        status,
		IssuedAt:      time.Now().Add(-48 * time.Hour),
		DueAt:         dueAt,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func newTestService(db *gorm.DB, gw stripegw.Client) Manager {
	return NewService(testConfig(), zap.NewNop().Sugar(), db, gw)
}

func TestCreateSession_InvoiceNotFound(t *testing.T) {
	svc := newTestService(newTestDB(t), &stubGateway{})

	_, err := svc.CreateSession(context.Background(), "debtor-1", &CreateSessionRequest{InvoiceID: tool.GenerateUUIDV7()})
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestCreateSession_OnlyDebtorMayInitiate(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPending, nil)
	svc := newTestService(db, &stubGateway{})

	_, err := svc.CreateSession(context.Background(), "someone-else", &CreateSessionRequest{InvoiceID: inv.ID})
	require.ErrorIs(t, err, ErrNotDebtor)

	// The issuer is a participant but still not the debtor.
	_, err = svc.CreateSession(context.Background(), inv.IssuerID, &CreateSessionRequest{InvoiceID: inv.ID})
	require.ErrorIs(t, err, ErrNotDebtor)
}

func TestCreateSession_AlreadyPaid(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPending, nil)
	require.NoError(t, db.Create(&models.Payment{
		ID:          tool.GenerateUUIDV7(),
		InvoiceID:   inv.ID,
		PaidAt:      time.Now(),
		Method:      types.PaymentMethodPayPalBridge,
		ExternalRef: "pi_123",
	}).Error)
	svc := newTestService(db, &stubGateway{})

	_, err := svc.CreateSession(context.Background(), inv.DebtorID, &CreateSessionRequest{InvoiceID: inv.ID})
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestCreateSession_PaidStatusWithoutPaymentRow(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPaid, nil)
	svc := newTestService(db, &stubGateway{})

	_, err := svc.CreateSession(context.Background(), inv.DebtorID, &CreateSessionRequest{InvoiceID: inv.ID})
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestCreateSession_CanceledNotPayable(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusCanceled, nil)
	svc := newTestService(db, &stubGateway{})

	_, err := svc.CreateSession(context.Background(), inv.DebtorID, &CreateSessionRequest{InvoiceID: inv.ID})
	require.ErrorIs(t, err, ErrNotPayable)
}

func TestCreateSession_OpensGatewaySession(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPending, nil)
	require.NoError(t, db.Create(&models.User{ID: "debtor-1", Email: "debtor@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "issuer-1", Email: "issuer@example.com"}).Error)
	gw := &stubGateway{}
	svc := newTestService(db, gw)

	res, err := svc.CreateSession(context.Background(), inv.DebtorID, &CreateSessionRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", res.SessionID)
	require.Equal(t, "https://checkout.example.com/pay/cs_test_1", res.RedirectURL)
	require.NotNil(t, res.Invoice)
	require.Equal(t, inv.InvoiceNumber, res.Invoice.InvoiceNumber)

	require.NotNil(t, gw.created)
	require.Equal(t, int64(9999), gw.created.AmountCents)
	require.Equal(t, "usd", gw.created.Currency)
	require.Equal(t, "debtor@example.com", gw.created.CustomerEmail)
	require.Equal(t, inv.ID, gw.created.Metadata[types.MetaKeyInvoiceID])
	require.Equal(t, "issuer@example.com", gw.created.Metadata[types.MetaKeyReceiverEmail])
	require.Equal(t, "https://app.example.com/checkout/success", gw.created.SuccessURL)
}

func TestCreateSession_RedirectOverrides(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPending, nil)
	gw := &stubGateway{}
	svc := newTestService(db, gw)

	_, err := svc.CreateSession(context.Background(), inv.DebtorID, &CreateSessionRequest{
		InvoiceID:  inv.ID,
		SuccessURL: "https://other.example.com/done",
		CancelURL:  "https://other.example.com/back",
	})
	require.NoError(t, err)
	require.Equal(t, "https://other.example.com/done", gw.created.SuccessURL)
	require.Equal(t, "https://other.example.com/back", gw.created.CancelURL)
}

func TestSessionStatus_RejectsMalformedID(t *testing.T) {
	svc := newTestService(newTestDB(t), &stubGateway{})

	_, err := svc.SessionStatus(context.Background(), "debtor-1", "not-a-session-id")
	require.ErrorIs(t, err, ErrBadSessionID)
}

func TestSessionStatus_UnknownSession(t *testing.T) {
	svc := newTestService(newTestDB(t), &stubGateway{getErr: stripegw.ErrSessionNotFound})

	_, err := svc.SessionStatus(context.Background(), "debtor-1", "cs_missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStatus_RequiresParticipant(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPending, nil)
	ref := &types.SettlementRef{InvoiceID: inv.ID, PayerID: inv.DebtorID, ReceiverID: inv.IssuerID}
	gw := &stubGateway{getSess: &stripe.CheckoutSession{
		ID:       "cs_test_1",
		Metadata: ref.Metadata(),
	}}
	svc := newTestService(db, gw)

	_, err := svc.SessionStatus(context.Background(), "stranger", "cs_test_1")
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestSessionStatus_NoInvoiceLinkage(t *testing.T) {
	gw := &stubGateway{getSess: &stripe.CheckoutSession{ID: "cs_test_1"}}
	svc := newTestService(newTestDB(t), gw)

	_, err := svc.SessionStatus(context.Background(), "debtor-1", "cs_test_1")
	require.ErrorIs(t, err, ErrNoInvoiceLinkage)
}

func TestSessionStatus_MergesLedgerTruth(t *testing.T) {
	db := newTestDB(t)
	inv := seedInvoice(t, db, types.InvoiceStatusPaid, nil)
	paidAt := time.Now().Add(-time.Minute).Truncate(time.Second)
	require.NoError(t, db.Create(&models.Payment{
		ID:          tool.GenerateUUIDV7(),
		InvoiceID:   inv.ID,
		PaidAt:      paidAt,
		Method:      types.PaymentMethodPayPalBridge,
		ExternalRef: "pi_456",
	}).Error)

	ref := &types.SettlementRef{InvoiceID: inv.ID, PayerID: inv.DebtorID, ReceiverID: inv.IssuerID}
	gw := &stubGateway{getSess: &stripe.CheckoutSession{
		ID:            "cs_test_1",
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   9999,
		Currency:      stripe.Currency("usd"),
		Created:       time.Now().Unix(),
		ExpiresAt:     time.Now().Add(30 * time.Minute).Unix(),
		Metadata:      ref.Metadata(),
	}}
	svc := newTestService(db, gw)

	res, err := svc.SessionStatus(context.Background(), inv.IssuerID, "cs_test_1")
	require.NoError(t, err)
	require.Equal(t, types.CheckoutStatusCompleted, res.Status)
	require.Equal(t, "USD", res.Currency)
	require.True(t, res.Amount.Equal(decimal.NewFromFloat(99.99)))
	require.NotNil(t, res.Payment)
	require.Equal(t, "pi_456", res.Payment.ExternalRef)
	require.Equal(t, types.InvoiceStatusPaid, res.Invoice.Status)
}

func TestMapSessionStatus(t *testing.T) {
	cases := []struct {
		name string
		sess *stripe.CheckoutSession
		want types.CheckoutStatus
	}{
		{"complete and paid", &stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid}, types.CheckoutStatusCompleted},
		{"expired", &stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusExpired, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}, types.CheckoutStatusExpired},
		{"open unpaid", &stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusOpen, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}, types.CheckoutStatusPending},
		{"no payment required", &stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusNoPaymentRequired}, types.CheckoutStatusCompleted},
		{"complete awaiting async funds", &stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusComplete}, types.CheckoutStatusProcessing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, mapSessionStatus(tc.sess))
		})
	}
}

func TestSessionAmount_PrefersLineItems(t *testing.T) {
	sess := &stripe.CheckoutSession{
		AmountTotal: 1,
		LineItems: &stripe.LineItemList{Data: []*stripe.LineItem{
			{AmountTotal: 5000},
			{AmountTotal: 4999},
		}},
	}
	require.True(t, sessionAmount(sess).Equal(decimal.NewFromFloat(99.99)))

	bare := &stripe.CheckoutSession{AmountTotal: 1230}
	require.True(t, sessionAmount(bare).Equal(decimal.NewFromFloat(12.30)))
}
