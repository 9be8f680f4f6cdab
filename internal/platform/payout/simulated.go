package payout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lumabill/biller/pkg/money"
)

// SimulatedClient deterministically succeeds, selected when no payout
// credentials are configured. It keeps the settlement path exercisable in
// non-production environments.
type SimulatedClient struct {
	log *zap.SugaredLogger
}

func NewSimulatedClient(log *zap.SugaredLogger) *SimulatedClient {
	return &SimulatedClient{log: log}
}

func (c *SimulatedClient) Send(_ context.Context, req *Request) (*Result, error) {
	res := &Result{
		BatchID:     batchID(time.Now(), req.InvoiceNumber),
		BatchStatus: "SIMULATED",
		Simulated:   true,
	}
	c.log.Infow("simulated payout",
		"batch_id", res.BatchID,
		"receiver", req.ReceiverEmail,
		"amount", money.FormatCents(req.AmountCents),
		"currency", req.Currency,
		"invoice_number", req.InvoiceNumber,
	)
	return res, nil
}
