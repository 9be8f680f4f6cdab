package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/lumabill/biller/internal/models"
	"github.com/lumabill/biller/pkg/types"
)

// Mailer delivers lifecycle emails. Rendering and delivery live in another
// service; this core only hands off. Failures are never fatal to the caller.
type Mailer interface {
	SendLifecycleMail(ctx context.Context, to string, typ types.NotificationType, invoice *models.Invoice) error
}

// LogMailer is the default Mailer: it records the handoff and does nothing
// else.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLogMailer(log *zap.SugaredLogger) Mailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendLifecycleMail(_ context.Context, to string, typ types.NotificationType, invoice *models.Invoice) error {
	m.log.Infow("lifecycle mail handoff",
		"to", to,
		"type", typ,
		"invoice_number", invoice.InvoiceNumber,
	)
	return nil
}
