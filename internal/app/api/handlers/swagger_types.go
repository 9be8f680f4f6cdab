package handlers

import (
	"time"

	"github.com/lumabill/biller/pkg/response"
	types "github.com/lumabill/biller/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// SwaggerNotification is a simplified view of models.Notification for
// documentation purposes.
type SwaggerNotification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	InvoiceID string                 `json:"invoice_id"`
	Type      types.NotificationType `json:"type"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
