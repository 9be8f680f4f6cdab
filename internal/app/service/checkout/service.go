package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumabill/biller/internal/models"
	"github.com/lumabill/biller/internal/platform/stripegw"
	cfgpkg "github.com/lumabill/biller/pkg/config"
	"github.com/lumabill/biller/pkg/logctx"
	"github.com/lumabill/biller/pkg/money"
	"github.com/lumabill/biller/pkg/types"
)

// sessionExpiry is the gateway-enforced checkout window.
const sessionExpiry = 30 * time.Minute

// descriptionLimit caps the line-item description sent to the gateway.
const descriptionLimit = 500

type CreateSessionRequest struct {
	InvoiceID  string `json:"-"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type InvoiceSummary struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	Subject       string              `json:"subject"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        types.InvoiceStatus `json:"status"`
	DueAt         *time.Time          `json:"due_at,omitempty"`
}

type CreateSessionResult struct {
	SessionID   string          `json:"session_id"`
	RedirectURL string          `json:"redirect_url"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Invoice     *InvoiceSummary `json:"invoice"`
}

type PaymentSummary struct {
	PaidAt      time.Time           `json:"paid_at"`
	Method      types.PaymentMethod `json:"method"`
	ExternalRef string              `json:"external_ref"`
}

type SessionStatusResult struct {
	SessionID     string               `json:"session_id"`
	Status        types.CheckoutStatus `json:"status"`
	PaymentStatus string               `json:"payment_status"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	CreatedAt     time.Time            `json:"created_at"`
	ExpiresAt     time.Time            `json:"expires_at"`
	Invoice       *InvoiceSummary      `json:"invoice"`
	Payment       *PaymentSummary      `json:"payment,omitempty"`
}

// Manager is the checkout surface consumed by the HTTP handlers.
type Manager interface {
	// CreateSession validates that the invoice is payable by the caller and
	// opens a gateway checkout session for the full invoice amount.
	CreateSession(ctx context.Context, callerID string, req *CreateSessionRequest) (*CreateSessionResult, error)
	// SessionStatus merges the gateway-reported session state with ledger
	// truth for a participant.
	SessionStatus(ctx context.Context, callerID, sessionID string) (*SessionStatusResult, error)
}

type Service struct {
	cfg     *cfgpkg.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	gateway stripegw.Client
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, gateway stripegw.Client) Manager {
	return &Service{cfg: cfg, log: log, db: db, gateway: gateway}
}

func (s *Service) CreateSession(ctx context.Context, callerID string, req *CreateSessionRequest) (*CreateSessionResult, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).First(&inv, "id = ?", req.InvoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	if callerID != inv.DebtorID {
		return nil, ErrNotDebtor
	}

	var existing models.Payment
	err := s.db.WithContext(ctx).First(&existing, "invoice_id = ?", inv.ID).Error
	if err == nil {
		return nil, ErrAlreadyPaid
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}

	if !inv.Status.Payable() {
		if inv.Status == types.InvoiceStatusPaid {
			return nil, ErrAlreadyPaid
		}
		return nil, ErrNotPayable
	}

	payerEmail := s.userEmail(ctx, inv.DebtorID)
	receiverEmail := s.userEmail(ctx, inv.IssuerID)

	ref := &types.SettlementRef{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		PayerID:       inv.DebtorID,
		PayerEmail:    payerEmail,
		ReceiverID:    inv.IssuerID,
		ReceiverEmail: receiverEmail,
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.cfg.Stripe.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.Stripe.CancelURL
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, &stripegw.CheckoutParams{
		Name:          fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		Description:   truncate(inv.Subject, descriptionLimit),
		AmountCents:   money.ToCents(inv.Amount),
		Currency:      s.cfg.Currency,
		CustomerEmail: payerEmail,
		Metadata:      ref.Metadata(),
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		ExpiresAt:     time.Now().Add(sessionExpiry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout session: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("checkout session opened",
		"session_id", sess.ID,
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)

	return &CreateSessionResult{
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
		ExpiresAt:   time.Unix(sess.ExpiresAt, 0).UTC(),
		Invoice:     summarize(&inv, time.Now()),
	}, nil
}

func (s *Service) SessionStatus(ctx context.Context, callerID, sessionID string) (*SessionStatusResult, error) {
	if !strings.HasPrefix(sessionID, stripegw.SessionIDPrefix) {
		return nil, ErrBadSessionID
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, stripegw.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	ref, err := types.SettlementRefFromMetadata(sess.Metadata)
	if err != nil {
		return nil, ErrNoInvoiceLinkage
	}
	if !ref.Authorizes(callerID) {
		return nil, ErrNotParticipant
	}

	// Ledger truth is read independently: the gateway can report the session
	// complete before the local settlement transaction has committed.
	var inv models.Invoice
	if err := s.db.WithContext(ctx).First(&inv, "id = ?", ref.InvoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	res := &SessionStatusResult{
		SessionID:     sess.ID,
		Status:        mapSessionStatus(sess),
		PaymentStatus: string(sess.PaymentStatus),
		Amount:        sessionAmount(sess),
		Currency:      strings.ToUpper(string(sess.Currency)),
		CreatedAt:     time.Unix(sess.Created, 0).UTC(),
		ExpiresAt:     time.Unix(sess.ExpiresAt, 0).UTC(),
		Invoice:       summarize(&inv, time.Now()),
	}

	var payment models.Payment
	err = s.db.WithContext(ctx).First(&payment, "invoice_id = ?", inv.ID).Error
	switch {
	case err == nil:
		res.Payment = &PaymentSummary{PaidAt: payment.PaidAt, Method: payment.Method, ExternalRef: payment.ExternalRef}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	return res, nil
}

// mapSessionStatus folds the gateway's two status fields into the merged
// status reported to polling clients.
func mapSessionStatus(sess *stripe.CheckoutSession) types.CheckoutStatus {
	switch {
	case sess.Status == stripe.CheckoutSessionStatusComplete && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return types.CheckoutStatusCompleted
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return types.CheckoutStatusExpired
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid:
		return types.CheckoutStatusPending
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return types.CheckoutStatusCompleted
	default:
		return types.CheckoutStatusProcessing
	}
}

// sessionAmount sums line-item totals; sessions without expanded line items
// fall back to the session total.
func sessionAmount(sess *stripe.CheckoutSession) decimal.Decimal {
	if sess.LineItems == nil || len(sess.LineItems.Data) == 0 {
		return money.FromCents(sess.AmountTotal)
	}
	var cents int64
	for _, item := range sess.LineItems.Data {
		cents += item.AmountTotal
	}
	return money.FromCents(cents)
}

func summarize(inv *models.Invoice, now time.Time) *InvoiceSummary {
	return &InvoiceSummary{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Subject:       inv.Subject,
		Amount:        inv.Amount,
		Status:        inv.StatusAt(now),
		DueAt:         inv.DueAt,
	}
}

// userEmail resolves a user's email for session metadata. User accounts are
// managed elsewhere; a missing row degrades to an empty email.
func (s *Service) userEmail(ctx context.Context, userID string) string {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("user email lookup failed", "user_id", userID, "err", err)
		return ""
	}
	return u.Email
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
