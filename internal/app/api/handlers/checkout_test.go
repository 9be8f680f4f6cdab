package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lumabill/biller/internal/app/service/checkout"
)

type stubCheckoutMgr struct {
	createRes *checkout.CreateSessionResult
	createErr error
	statusRes *checkout.SessionStatusResult
	statusErr error
}

func (m *stubCheckoutMgr) CreateSession(_ context.Context, _ string, _ *checkout.CreateSessionRequest) (*checkout.CreateSessionResult, error) {
	return m.createRes, m.createErr
}

func (m *stubCheckoutMgr) SessionStatus(_ context.Context, _, _ string) (*checkout.SessionStatusResult, error) {
	return m.statusRes, m.statusErr
}

func checkoutRouter(mgr checkout.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterCheckoutRoutes(g, mgr)
	return r
}

func TestRegisterCheckoutRoutes_RegistersEndpoints(t *testing.T) {
	r := checkoutRouter(&stubCheckoutMgr{})

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/invoices/:id/checkout"))
	require.True(t, contains("GET /api/v1/checkout/sessions/:id"))
}

func TestApiCreateCheckoutSession_OK(t *testing.T) {
	r := checkoutRouter(&stubCheckoutMgr{createRes: &checkout.CreateSessionResult{
		SessionID:   "cs_test_1",
		RedirectURL: "https://checkout.example.com/pay/cs_test_1",
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/inv-1/checkout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "cs_test_1")
}

func TestApiCreateCheckoutSession_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", checkout.ErrInvoiceNotFound, http.StatusNotFound, "invoice not found"},
		{"not debtor", checkout.ErrNotDebtor, http.StatusForbidden, "40300"},
		{"already paid", checkout.ErrAlreadyPaid, http.StatusBadRequest, "40900"},
		{"not payable", checkout.ErrNotPayable, http.StatusBadRequest, "40000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := checkoutRouter(&stubCheckoutMgr{createErr: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/inv-1/checkout", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestApiGetSessionStatus_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad id", checkout.ErrBadSessionID, http.StatusBadRequest},
		{"unknown session", checkout.ErrSessionNotFound, http.StatusNotFound},
		{"not participant", checkout.ErrNotParticipant, http.StatusForbidden},
		{"no linkage", checkout.ErrNoInvoiceLinkage, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := checkoutRouter(&stubCheckoutMgr{statusErr: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/sessions/cs_x", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
