package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumabill/biller/internal/app/service/settlement"
	"github.com/lumabill/biller/pkg/response"
)

// StripeSignatureHeader carries the gateway's payload signature. Trust is
// established solely through it; the endpoint is otherwise unauthenticated.
const StripeSignatureHeader = "Stripe-Signature"

// @Summary      Stripe Webhook
// @Description  Handles checkout session lifecycle events. The request body must be the exact raw payload signed by the gateway.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /api/v1/webhook/stripe [post]
func ApiStripeWebhook(proc settlement.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "failed to read request body"))
			return
		}

		err = proc.HandleEvent(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader))
		if err != nil {
			if errors.Is(err, settlement.ErrSignature) {
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "signature verification failed"))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "internal error"))
			return
		}

		// The gateway only needs the acknowledgement; internal side-effect
		// failures were already logged and must not trigger redelivery.
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, proc settlement.Processor) {
	r.POST("/stripe", ApiStripeWebhook(proc))
}
