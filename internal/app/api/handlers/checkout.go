package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumabill/biller/internal/app/api/middleware"
	"github.com/lumabill/biller/internal/app/service/checkout"
	"github.com/lumabill/biller/pkg/response"
)

// statusForCheckoutErr maps the checkout error taxonomy onto HTTP status and
// envelope code.
func statusForCheckoutErr(err error) (int, response.APIResponseCode) {
	switch {
	case errors.Is(err, checkout.ErrInvoiceNotFound), errors.Is(err, checkout.ErrSessionNotFound):
		return http.StatusNotFound, response.APIResponseCodeNotFound
	case errors.Is(err, checkout.ErrNotDebtor), errors.Is(err, checkout.ErrNotParticipant):
		return http.StatusForbidden, response.APIResponseCodeForbidden
	case errors.Is(err, checkout.ErrAlreadyPaid):
		return http.StatusBadRequest, response.APIResponseCodeConflict
	case errors.Is(err, checkout.ErrNotPayable), errors.Is(err, checkout.ErrBadSessionID), errors.Is(err, checkout.ErrNoInvoiceLinkage):
		return http.StatusBadRequest, response.APIResponseCodeBadRequest
	default:
		return http.StatusInternalServerError, response.APIResponseCodeError
	}
}

// @Summary      Initiate invoice checkout
// @Description  Opens a hosted checkout session for a payable invoice. Only the invoice debtor may initiate.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices/{id}/checkout [post]
func ApiCreateCheckoutSession(mgr checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := checkout.CreateSessionRequest{}
		// Redirect overrides are optional; an empty body is fine.
		_ = c.ShouldBindJSON(&req)
		req.InvoiceID = c.Param("id")

		res, err := mgr.CreateSession(c.Request.Context(), middleware.CallerID(c), &req)
		if err != nil {
			status, code := statusForCheckoutErr(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				msg = "failed to open checkout session"
			}
			c.JSON(status, response.ErrorT[any](code, msg))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Checkout session status
// @Description  Merges gateway-reported session state with ledger truth for a session participant.
// @Tags         Checkout
// @Produce      json
// @Param        id path string true "Checkout session ID (cs_...)"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/checkout/sessions/{id} [get]
func ApiGetSessionStatus(mgr checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.SessionStatus(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
		if err != nil {
			status, code := statusForCheckoutErr(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				msg = "failed to resolve session status"
			}
			c.JSON(status, response.ErrorT[any](code, msg))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, mgr checkout.Manager) {
	r.POST("/invoices/:id/checkout", ApiCreateCheckoutSession(mgr))
	r.GET("/checkout/sessions/:id", ApiGetSessionStatus(mgr))
}
