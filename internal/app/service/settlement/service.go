package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumabill/biller/internal/app/service/eventlog"
	"github.com/lumabill/biller/internal/app/service/notification"
	"github.com/lumabill/biller/internal/models"
	"github.com/lumabill/biller/internal/platform/payout"
	"github.com/lumabill/biller/internal/platform/stripegw"
	cfgpkg "github.com/lumabill/biller/pkg/config"
	"github.com/lumabill/biller/pkg/logctx"
	"github.com/lumabill/biller/pkg/tool"
	"github.com/lumabill/biller/pkg/types"
)

// ErrSignature marks an unverifiable webhook request. It is the only class of
// webhook failure the handler reports as a client error, so the gateway stops
// redelivering something fundamentally wrong.
var ErrSignature = stripegw.ErrSignature

// Processor is the webhook surface consumed by the HTTP handler.
type Processor interface {
	// HandleEvent verifies the raw payload against the signature header,
	// dispatches by event type and settles the invoice exactly once.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	gateway  stripegw.Client
	payouts  payout.Client
	notifSvc *notification.Service
	mailer   notification.Mailer
	events   *eventlog.Service
}

func NewService(
	cfg *cfgpkg.Config,
	log *zap.SugaredLogger,
	db *gorm.DB,
	gateway stripegw.Client,
	payouts payout.Client,
	notifSvc *notification.Service,
	mailer notification.Mailer,
	events *eventlog.Service,
) Processor {
	return &Service{
		cfg:      cfg,
		log:      log,
		db:       db,
		gateway:  gateway,
		payouts:  payouts,
		notifSvc: notifSvc,
		mailer:   mailer,
		events:   events,
	}
}

func (s *Service) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (resErr error) {
	if sigHeader == "" {
		return fmt.Errorf("%w: missing signature header", ErrSignature)
	}

	// Verification must run on the exact raw bytes; the signature is computed
	// over them, not over a re-serialized parse.
	event, err := s.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	log := logctx.FromCtx(ctx, s.log)

	var sess stripe.CheckoutSession
	if len(event.Data.Raw) > 0 {
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Warnw("failed to decode event object", "event_id", event.ID, "event_type", event.Type, "err", err)
		}
	}

	entry := &models.WebhookEventLog{
		ID:         tool.GenerateUUIDV7(),
		EventID:    event.ID,
		EventType:  string(event.Type),
		SessionID:  sess.ID,
		ReceivedAt: time.Now(),
		Payload:    datatypes.JSON(payload),
		Status:     models.WebhookEventLogStatusReceived,
	}
	if tid, ok := ctx.Value("traceID").(string); ok {
		entry.TraceID = tid
	}
	if sess.Metadata != nil && sess.Metadata[types.MetaKeyInvoiceID] != "" {
		entry.InvoiceID = lo.ToPtr(sess.Metadata[types.MetaKeyInvoiceID])
	}
	s.events.Save(ctx, entry)

	defer func() {
		result := map[string]any{"event_type": string(event.Type)}
		status := models.WebhookEventLogStatusHandled
		if resErr != nil {
			result["error"] = resErr.Error()
			status = models.WebhookEventLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(result)
		handled := *entry
		handled.ID = tool.GenerateUUIDV7()
		handled.Status = status
		handled.Result = func() *datatypes.JSON { j := datatypes.JSON(resBytes); return &j }()
		s.events.Save(ctx, &handled)
	}()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			return s.settle(ctx, &sess)
		}
		// Funding method confirms asynchronously; wait for the
		// async_payment_succeeded event.
		log.Infow("checkout completed, payment pending async confirmation", "session_id", sess.ID)
		return nil

	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return s.settle(ctx, &sess)

	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		log.Warnw("async payment failed, invoice remains unsettled", "session_id", sess.ID)
		return nil

	case stripe.EventTypeCheckoutSessionExpired:
		log.Infow("checkout session expired", "session_id", sess.ID)
		return nil

	default:
		log.Debugw("ignoring unhandled event type", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}

// settle records the payment and flips the invoice to PAID, exactly once. It
// returns a non-nil error only for unexpected internal failures, where
// gateway redelivery is the correct recovery.
func (s *Service) settle(ctx context.Context, sess *stripe.CheckoutSession) error {
	log := logctx.FromCtx(ctx, s.log)

	ref, err := types.SettlementRefFromMetadata(sess.Metadata)
	if err != nil {
		// Cannot settle what cannot be identified; acknowledge so the
		// gateway does not redeliver forever.
		log.Errorw("session carries no invoice linkage, dropping event", "session_id", sess.ID, "err", err)
		return nil
	}

	// Fast path for at-least-once delivery. The correctness mechanism is the
	// unique index on payment.invoice_id, not this pre-check.
	var existing models.Payment
	err = s.db.WithContext(ctx).First(&existing, "invoice_id = ?", ref.InvoiceID).Error
	if err == nil {
		log.Infow("invoice already settled, ignoring redelivery", "invoice_id", ref.InvoiceID, "session_id", sess.ID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing payment: %w", err)
	}

	var inv models.Invoice
	err = s.db.WithContext(ctx).First(&inv, "id = ?", ref.InvoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("invoice referenced by session does not exist, dropping event", "invoice_id", ref.InvoiceID, "session_id", sess.ID)
			return nil
		}
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	if inv.Status == types.InvoiceStatusPaid {
		log.Infow("invoice already marked paid, ignoring event", "invoice_id", inv.ID)
		return nil
	}

	externalRef := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		externalRef = sess.PaymentIntent.ID
	}

	pmt := &models.Payment{
		ID:          tool.GenerateUUIDV7(),
		InvoiceID:   inv.ID,
		PaidAt:      time.Now(),
		Method:      types.PaymentMethodPayPalBridge,
		ExternalRef: externalRef,
		ReceiptRef:  fmt.Sprintf("stripe:checkout_session:%s", sess.ID),
		Subject:     lo.ToPtr(fmt.Sprintf("Payment for invoice %s", inv.InvoiceNumber)),
	}

	// Payment insert and status flip commit together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pmt).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).
			Where("id = ?", inv.ID).
			Update("status", types.InvoiceStatusPaid).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A racing delivery won the insert; the invoice is settled.
			log.Infow("concurrent settlement detected, treating as settled", "invoice_id", inv.ID)
			return nil
		}
		return fmt.Errorf("settlement transaction failed: %w", err)
	}

	log.Infow("invoice settled",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"payment_id", pmt.ID,
		"external_ref", externalRef,
	)

	// Everything past the commit is best effort. The settlement fact must
	// never be lost or retried away because a downstream side effect failed.
	s.dispatchPayout(ctx, sess, ref)
	s.notifyPaymentReceived(ctx, &inv, ref)
	return nil
}

func (s *Service) dispatchPayout(ctx context.Context, sess *stripe.CheckoutSession, ref *types.SettlementRef) {
	currency := string(sess.Currency)
	if currency == "" {
		currency = s.cfg.Currency
	}
	res, err := s.payouts.Send(ctx, &payout.Request{
		ReceiverEmail: ref.ReceiverEmail,
		AmountCents:   sess.AmountTotal,
		Currency:      currency,
		InvoiceNumber: ref.InvoiceNumber,
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("payout failed after settlement, replay manually",
			"invoice_id", ref.InvoiceID,
			"invoice_number", ref.InvoiceNumber,
			"receiver", ref.ReceiverEmail,
			"amount_cents", sess.AmountTotal,
			"currency", currency,
			"err", err,
		)
		return
	}
	logctx.FromCtx(ctx, s.log).Infow("payout dispatched", "invoice_id", ref.InvoiceID, "batch_id", res.BatchID, "batch_status", res.BatchStatus)
}

func (s *Service) notifyPaymentReceived(ctx context.Context, inv *models.Invoice, ref *types.SettlementRef) {
	log := logctx.FromCtx(ctx, s.log)
	if _, err := s.notifSvc.Create(ctx, ref.ReceiverID, inv.ID, types.NotificationTypePaymentReceived); err != nil {
		log.Errorw("failed to record payment-received notification", "invoice_id", inv.ID, "err", err)
	}
	if ref.ReceiverEmail != "" {
		if err := s.mailer.SendLifecycleMail(ctx, ref.ReceiverEmail, types.NotificationTypePaymentReceived, inv); err != nil {
			log.Errorw("failed to hand off payment-received mail", "invoice_id", inv.ID, "err", err)
		}
	}
}
