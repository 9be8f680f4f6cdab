package payout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"
)

// PayPalClient submits one-item Payouts batches to the PayPal REST API.
type PayPalClient struct {
	pp  *paypal.Client
	log *zap.SugaredLogger
}

func NewPayPalClient(clientID, secret string, live bool, log *zap.SugaredLogger) (*PayPalClient, error) {
	apiBase := paypal.APIBaseSandBox
	if live {
		apiBase = paypal.APIBaseLive
	}
	pp, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to init paypal client: %w", err)
	}
	return &PayPalClient{pp: pp, log: log}, nil
}

func (c *PayPalClient) Send(ctx context.Context, req *Request) (*Result, error) {
	if _, err := c.pp.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("failed to get paypal access token: %w", err)
	}

	id := batchID(time.Now(), req.InvoiceNumber)
	payout := paypal.Payout{
		SenderBatchHeader: &paypal.SenderBatchHeader{
			SenderBatchID: id,
			EmailSubject:  fmt.Sprintf("Payout for invoice %s", req.InvoiceNumber),
		},
		Items: []paypal.PayoutItem{
			{
				RecipientType: "EMAIL",
				Receiver:      req.ReceiverEmail,
				Amount: &paypal.AmountPayout{
					Value:    amountValue(req.AmountCents),
					Currency: strings.ToUpper(req.Currency),
				},
				Note:         note(req),
				SenderItemID: id,
			},
		},
	}

	res, err := c.pp.CreatePayout(ctx, payout)
	if err != nil {
		return nil, fmt.Errorf("paypal payout failed for invoice %s: %w", req.InvoiceNumber, err)
	}

	result := &Result{BatchID: id}
	if res.BatchHeader != nil {
		result.BatchStatus = res.BatchHeader.BatchStatus
		if res.BatchHeader.PayoutBatchID != "" {
			result.BatchID = res.BatchHeader.PayoutBatchID
		}
	}
	c.log.Infow("paypal payout submitted",
		"batch_id", result.BatchID,
		"batch_status", result.BatchStatus,
		"invoice_number", req.InvoiceNumber,
	)
	return result, nil
}
