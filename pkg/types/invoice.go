package types

type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "PENDING"
	InvoiceStatusOverdue  InvoiceStatus = "OVERDUE"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
	InvoiceStatusCanceled InvoiceStatus = "CANCELED"
)

// Payable reports whether an invoice in this status may still be settled.
func (s InvoiceStatus) Payable() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

type PaymentMethod string

const (
	// PaymentMethodPayPalBridge marks payments collected through the hosted
	// checkout and paid out over the PayPal rail.
	PaymentMethodPayPalBridge PaymentMethod = "paypal_bridge"
)

// CheckoutStatus is the merged session status reported to polling clients.
type CheckoutStatus string

const (
	CheckoutStatusCompleted  CheckoutStatus = "completed"
	CheckoutStatusExpired    CheckoutStatus = "expired"
	CheckoutStatusPending    CheckoutStatus = "pending"
	CheckoutStatusProcessing CheckoutStatus = "processing"
)
