package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumabill/biller/internal/models"
	"github.com/lumabill/biller/pkg/tool"
	"github.com/lumabill/biller/pkg/types"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Create inserts a notification record for a user about an invoice.
func (s *Service) Create(ctx context.Context, userID, invoiceID string, typ types.NotificationType) (*models.Notification, error) {
	n := &models.Notification{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		InvoiceID: invoiceID,
		Type:      typ,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s notification: %w", typ, err)
	}
	return n, nil
}

// Exists reports whether a notification of the given type was already
// recorded for the invoice. The sweep uses this as its at-most-once check.
func (s *Service) Exists(ctx context.Context, invoiceID string, typ types.NotificationType) (bool, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND type = ?", invoiceID, typ).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListForUser returns a user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var items []*models.Notification
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

// MarkRead flips the read flag on a notification owned by the user.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
