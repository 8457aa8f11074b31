package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/recuerdos/tienda/internal/payment/domain"
	"github.com/stretchr/testify/require"
)

type paymentSvcStub struct {
	lastNotification *paymentdomain.Notification
	ingestResult     paymentdomain.IngestResult
	resyncResp       *paymentdomain.ResyncResponse
	resyncErr        error
}

func (p *paymentSvcStub) Ingest(ctx context.Context, n paymentdomain.Notification) paymentdomain.IngestResult {
	p.lastNotification = &n
	return p.ingestResult
}

func (p *paymentSvcStub) Resync(ctx context.Context, req paymentdomain.ResyncRequest) (*paymentdomain.ResyncResponse, error) {
	if p.resyncErr != nil {
		return nil, p.resyncErr
	}
	return p.resyncResp, nil
}

func (p *paymentSvcStub) ListEvents(ctx context.Context, req paymentdomain.ListEventsRequest) (*paymentdomain.ListEventsResponse, error) {
	return &paymentdomain.ListEventsResponse{}, nil
}

func (p *paymentSvcStub) ListFailures(ctx context.Context, req paymentdomain.ListFailuresRequest) ([]paymentdomain.FailureResponse, error) {
	return nil, nil
}

func (p *paymentSvcStub) ReplayFailure(ctx context.Context, id int64) (*paymentdomain.ReplayResponse, error) {
	return nil, paymentdomain.ErrNotFound
}

func newWebhookTestServer(stub *paymentSvcStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	s := &Server{engine: r, paymentSvc: stub}
	s.registerWebhookRoutes()
	s.registerAdminRoutes()
	return r
}

func TestPaymentWebhookAlwaysAcks(t *testing.T) {
	stub := &paymentSvcStub{ingestResult: paymentdomain.IngestResult{Ok: true, Outcome: paymentdomain.OutcomeReconciled}}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments",
		strings.NewReader(`{"type":"payment","data":{"id":"555"}}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body["ok"])

	require.NotNil(t, stub.lastNotification)
	require.Equal(t, "payment", stub.lastNotification.Type)
	require.Equal(t, "555", stub.lastNotification.ResourceID)
}

func TestPaymentWebhookEmptyBodyUsesQueryParams(t *testing.T) {
	stub := &paymentSvcStub{ingestResult: paymentdomain.IngestResult{Ok: true, Outcome: paymentdomain.OutcomeReconciled}}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments?topic=payment&id=123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.lastNotification)
	require.Equal(t, "payment", stub.lastNotification.Type)
	require.Equal(t, "123", stub.lastNotification.ResourceID)
}

func TestPaymentWebhookReportsFailureWithOK200(t *testing.T) {
	stub := &paymentSvcStub{ingestResult: paymentdomain.IngestResult{Ok: false, Outcome: paymentdomain.OutcomeFailed}}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments",
		strings.NewReader(`{"type":"payment","data":{"id":"555"}}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body["ok"])
}

func TestResyncRejectsNonApproved(t *testing.T) {
	stub := &paymentSvcStub{resyncErr: paymentdomain.ErrPaymentNotApproved}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/payments/resync",
		strings.NewReader(`{"payment_id":"555"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResyncAnswers400ForUnknownPayment(t *testing.T) {
	stub := &paymentSvcStub{resyncErr: paymentdomain.ErrPaymentNotFound}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/payments/resync",
		strings.NewReader(`{"payment_id":"999999"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// a human is waiting on this call, surface the miss as a client error
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResyncReturnsReconciliationSummary(t *testing.T) {
	stub := &paymentSvcStub{resyncResp: &paymentdomain.ResyncResponse{
		OrderID:      "123",
		Status:       "approved",
		SalesCreated: 2,
		StockDebited: true,
	}}
	r := newWebhookTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/payments/resync",
		strings.NewReader(`{"payment_id":"555"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp paymentdomain.ResyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.SalesCreated)
	require.True(t, resp.StockDebited)
}
