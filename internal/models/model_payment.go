package models

import (
	"time"

	"github.com/lumabill/biller/pkg/types"
)

// Payment is the settlement record proving an invoice was paid. The unique
// index on invoice_id is the idempotency guard: under racing webhook
// deliveries at most one insert wins.
type Payment struct {
	ID          string              `gorm:"column:id;primary_key;type:uuid" json:"id"`
	InvoiceID   string              `gorm:"column:invoice_id;type:uuid;not null;uniqueIndex:unique_payment_invoice" json:"invoice_id"`
	PaidAt      time.Time           `gorm:"column:paid_at;not null" json:"paid_at"`
	Method      types.PaymentMethod `gorm:"column:method;type:varchar(32);not null" json:"method"`
	ExternalRef string              `gorm:"column:external_ref;type:varchar(128);not null" json:"external_ref"`
	ReceiptRef  string              `gorm:"column:receipt_ref;type:varchar(256)" json:"receipt_ref"`
	Subject     *string             `gorm:"column:subject;type:varchar(512);default:null" json:"subject"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Payment) TableName() string { return "payment" }
