package payout

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lumabill/biller/pkg/money"
)

// Request is a single outbound payout to the invoice issuer, gross session
// amount in gateway minor units.
type Request struct {
	ReceiverEmail string
	AmountCents   int64
	Currency      string
	InvoiceNumber string
}

// Result reports the payout network's batch reference.
type Result struct {
	BatchID     string
	BatchStatus string
	Simulated   bool
}

// Client submits single-item batch payouts. Failures are the caller's problem:
// a failed payout must never roll back a recorded payment.
type Client interface {
	Send(ctx context.Context, req *Request) (*Result, error)
}

var batchIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// batchID derives a unique, human-traceable batch reference from the send
// time and the invoice number.
func batchID(now time.Time, invoiceNumber string) string {
	return fmt.Sprintf("payout_%d_%s", now.UnixNano(), batchIDSanitizer.ReplaceAllString(invoiceNumber, ""))
}

// amountValue converts gateway minor units into the payout network's decimal
// major-unit string.
func amountValue(cents int64) string {
	return money.FormatCents(cents)
}

// note is the human-readable memo attached to the payout item.
func note(req *Request) string {
	return fmt.Sprintf("Settlement for invoice %s (%s %s)",
		req.InvoiceNumber, money.FormatCents(req.AmountCents), strings.ToUpper(req.Currency))
}
