package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumabill/biller/internal/app/service/notification"
	"github.com/lumabill/biller/internal/models"
	cfgpkg "github.com/lumabill/biller/pkg/config"
	"github.com/lumabill/biller/pkg/types"
)

var payableStatuses = []types.InvoiceStatus{types.InvoiceStatusPending, types.InvoiceStatusOverdue}

// Service runs the periodic due/overdue scans. Each scan is a pure function
// of the injected "now": scheduling lives in scheduler.go, so the scans are
// unit-testable without a real clock.
type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	notifSvc *notification.Service
	mailer   notification.Mailer
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, notifSvc *notification.Service, mailer notification.Mailer) *Service {
	return &Service{cfg: cfg, log: log, db: db, notifSvc: notifSvc, mailer: mailer}
}

// SweepDueSoon notifies debtors of invoices whose due date falls within the
// configured window. At most one PAYMENT_DUE notification per invoice, ever.
// Returns the number of notifications sent.
func (s *Service) SweepDueSoon(ctx context.Context, now time.Time) (int, error) {
	days := s.cfg.Sweep.DueSoonDays
	if days <= 0 {
		days = 3
	}
	from := startOfDay(now)
	to := endOfDay(now.AddDate(0, 0, days))

	var invoices []*models.Invoice
	err := s.db.WithContext(ctx).
		Where("status IN ?", payableStatuses).
		Where("due_at IS NOT NULL AND due_at >= ? AND due_at <= ?", from, to).
		Find(&invoices).Error
	if err != nil {
		return 0, fmt.Errorf("due-soon scan query failed: %w", err)
	}

	return s.notifyEach(ctx, invoices, types.NotificationTypePaymentDue), nil
}

// SweepOverdue notifies debtors of invoices whose due date is strictly before
// today. At most one PAYMENT_OVERDUE notification per invoice, ever. The scan
// does not write the OVERDUE status: overdue is derived wherever invoice
// status is read.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	var invoices []*models.Invoice
	err := s.db.WithContext(ctx).
		Where("status IN ?", payableStatuses).
		Where("due_at IS NOT NULL AND due_at < ?", startOfDay(now)).
		Find(&invoices).Error
	if err != nil {
		return 0, fmt.Errorf("overdue scan query failed: %w", err)
	}

	return s.notifyEach(ctx, invoices, types.NotificationTypePaymentOverdue), nil
}

// CleanupNotifications purges read notifications older than the retention
// window. Returns the number of rows removed.
func (s *Service) CleanupNotifications(ctx context.Context, now time.Time) (int, error) {
	days := s.cfg.Sweep.RetentionDays
	if days <= 0 {
		days = 90
	}
	cutoff := now.AddDate(0, 0, -days)

	res := s.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("notification cleanup failed: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// notifyEach emits one notification per invoice, tolerating per-invoice
// failures: one bad row must not starve the rest of the scan.
func (s *Service) notifyEach(ctx context.Context, invoices []*models.Invoice, typ types.NotificationType) int {
	sent := 0
	for _, inv := range invoices {
		exists, err := s.notifSvc.Exists(ctx, inv.ID, typ)
		if err != nil {
			s.log.Errorw("sweep existence check failed", "invoice_id", inv.ID, "type", typ, "err", err)
			continue
		}
		if exists {
			continue
		}
		if _, err := s.notifSvc.Create(ctx, inv.DebtorID, inv.ID, typ); err != nil {
			s.log.Errorw("sweep notification insert failed", "invoice_id", inv.ID, "type", typ, "err", err)
			continue
		}
		s.handOffMail(ctx, inv, typ)
		sent++
	}
	return sent
}

func (s *Service) handOffMail(ctx context.Context, inv *models.Invoice, typ types.NotificationType) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", inv.DebtorID).Error; err != nil {
		s.log.Warnw("sweep mail skipped, debtor email unknown", "invoice_id", inv.ID, "debtor_id", inv.DebtorID)
		return
	}
	if err := s.mailer.SendLifecycleMail(ctx, u.Email, typ, inv); err != nil {
		s.log.Errorw("sweep mail handoff failed", "invoice_id", inv.ID, "err", err)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
