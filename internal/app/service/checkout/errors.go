package checkout

import "errors"

var (
	// ErrInvoiceNotFound means no such invoice exists in the ledger.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrNotDebtor means the caller is not the invoice's debtor; only the
	// debtor may initiate payment of their own debt.
	ErrNotDebtor = errors.New("only the invoice debtor may pay this invoice")
	// ErrAlreadyPaid means the invoice has already been paid.
	ErrAlreadyPaid = errors.New("invoice has already been paid")
	// ErrNotPayable means the invoice is not in a payable state.
	ErrNotPayable = errors.New("invoice is not in a payable state")
	// ErrBadSessionID means the session id does not match the gateway's
	// prefix convention.
	ErrBadSessionID = errors.New("malformed checkout session id")
	// ErrSessionNotFound means the gateway does not know the session.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrNoInvoiceLinkage means the session metadata carries no invoice
	// reference.
	ErrNoInvoiceLinkage = errors.New("session metadata missing invoice linkage")
	// ErrNotParticipant means the caller is neither payer nor receiver of
	// the session.
	ErrNotParticipant = errors.New("caller is not a participant of this session")
)
