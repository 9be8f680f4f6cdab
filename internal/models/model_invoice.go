package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumabill/biller/pkg/types"
)

// Invoice is a request for payment from a debtor to an issuer. Rows are
// created by the issuance flow; this core only transitions them to PAID
// (settlement) or reports them as OVERDUE (derived from the due date).
type Invoice struct {
	ID            string              `gorm:"column:id;primary_key;type:uuid" json:"id"`
	InvoiceNumber string              `gorm:"column:invoice_number;type:varchar(64);not null;uniqueIndex" json:"invoice_number"`
	IssuerID      string              `gorm:"column:issuer_id;type:varchar(64);not null;index" json:"issuer_id"`
	DebtorID      string              `gorm:"column:debtor_id;type:varchar(64);not null;index" json:"debtor_id"`
	Subject       string              `gorm:"column:subject;type:varchar(512)" json:"subject"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status        types.InvoiceStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	IssuedAt      time.Time           `gorm:"column:issued_at;not null" json:"issued_at"`
	DueAt         *time.Time          `gorm:"column:due_at;default:null;index" json:"due_at"`
	DocumentRef   string              `gorm:"column:document_ref;type:varchar(256)" json:"document_ref"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoice" }

// StatusAt reports the observed status at a point in time: a payable invoice
// past its due date reads as OVERDUE without any ledger write.
func (i *Invoice) StatusAt(now time.Time) types.InvoiceStatus {
	if i.Status == types.InvoiceStatusPending && i.DueAt != nil && i.DueAt.Before(now) {
		return types.InvoiceStatusOverdue
	}
	return i.Status
}
