package types

import "fmt"

// Metadata keys carried on every checkout session. The gateway echoes them
// back verbatim on webhook events and session reads.
const (
	MetaKeyInvoiceID     = "invoiceId"
	MetaKeyInvoiceNumber = "invoiceNumber"
	MetaKeyPayerID       = "payerId"
	MetaKeyPayerEmail    = "payerEmail"
	MetaKeyReceiverID    = "receiverId"
	MetaKeyReceiverEmail = "receiverEmail"
)

// SettlementRef is the validated join key between a gateway checkout session
// and the local invoice ledger. A session id alone is never trusted as
// belonging to an invoice; the invoice linkage is always re-derived from the
// session metadata through this type.
type SettlementRef struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	PayerID       string `json:"payer_id"`
	PayerEmail    string `json:"payer_email"`
	ReceiverID    string `json:"receiver_id"`
	ReceiverEmail string `json:"receiver_email"`
}

// SettlementRefFromMetadata rebuilds the reference from gateway session
// metadata. The invoice id is the only mandatory field: without it nothing
// can be settled.
func SettlementRefFromMetadata(md map[string]string) (*SettlementRef, error) {
	if md == nil || md[MetaKeyInvoiceID] == "" {
		return nil, fmt.Errorf("session metadata missing %s", MetaKeyInvoiceID)
	}
	return &SettlementRef{
		InvoiceID:     md[MetaKeyInvoiceID],
		InvoiceNumber: md[MetaKeyInvoiceNumber],
		PayerID:       md[MetaKeyPayerID],
		PayerEmail:    md[MetaKeyPayerEmail],
		ReceiverID:    md[MetaKeyReceiverID],
		ReceiverEmail: md[MetaKeyReceiverEmail],
	}, nil
}

// Metadata serializes the reference into the string map attached to the
// checkout session.
func (r *SettlementRef) Metadata() map[string]string {
	return map[string]string{
		MetaKeyInvoiceID:     r.InvoiceID,
		MetaKeyInvoiceNumber: r.InvoiceNumber,
		MetaKeyPayerID:       r.PayerID,
		MetaKeyPayerEmail:    r.PayerEmail,
		MetaKeyReceiverID:    r.ReceiverID,
		MetaKeyReceiverEmail: r.ReceiverEmail,
	}
}

// Authorizes reports whether userID is a participant of the settlement.
func (r *SettlementRef) Authorizes(userID string) bool {
	return userID != "" && (userID == r.PayerID || userID == r.ReceiverID)
}
