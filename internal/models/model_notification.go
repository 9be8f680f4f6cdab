package models

import (
	"time"

	"github.com/lumabill/biller/pkg/types"
)

// Notification is a lifecycle notice shown to a user. The sweep guarantees at
// most one PAYMENT_DUE and one PAYMENT_OVERDUE row per invoice via an
// existence check before insert.
type Notification struct {
	ID        string                 `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID    string                 `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	InvoiceID string                 `gorm:"column:invoice_id;type:uuid;not null;index:idx_notification_invoice_type,priority:1" json:"invoice_id"`
	Type      types.NotificationType `gorm:"column:type;type:varchar(32);not null;index:idx_notification_invoice_type,priority:2" json:"type"`
	Read      bool                   `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (Notification) TableName() string { return "notification" }
