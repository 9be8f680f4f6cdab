package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lumabill/biller/internal/app/service/settlement"
)

type stubProcessor struct {
	err     error
	payload []byte
	sig     string
}

func (p *stubProcessor) HandleEvent(_ context.Context, payload []byte, sigHeader string) error {
	p.payload = payload
	p.sig = sigHeader
	return p.err
}

func webhookRouter(proc settlement.Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/webhook")
	RegisterWebhookRoutes(g, proc)
	return r
}

func TestApiStripeWebhook_Acknowledges(t *testing.T) {
	proc := &stubProcessor{}
	r := webhookRouter(proc)

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/stripe", bytes.NewReader(body))
	req.Header.Set(StripeSignatureHeader, "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "received")
	// The handler must pass the exact raw body through for verification.
	require.Equal(t, body, proc.payload)
	require.Equal(t, "t=1,v1=abc", proc.sig)
}

func TestApiStripeWebhook_SignatureFailureIsClientError(t *testing.T) {
	r := webhookRouter(&stubProcessor{err: settlement.ErrSignature})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiStripeWebhook_InternalFailureTriggersRedelivery(t *testing.T) {
	r := webhookRouter(&stubProcessor{err: errors.New("settlement transaction failed")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
