package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/adapter/http/dto"
	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/internal/core/ports/mocks"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePoller stubs the handler-local StatusPoller interface.
type fakePoller struct {
	outcome ports.Outcome
	tx      *domain.Transaction
	err     error
}

func (f *fakePoller) PollNow(context.Context, string) (ports.Outcome, *domain.Transaction, error) {
	return f.outcome, f.tx, f.err
}

func testFrontend() config.FrontendConfig {
	return config.FrontendConfig{
		SuccessURL: "http://shop.example/payment/success",
		RetryURL:   "http://shop.example/payment/retry",
		FailureURL: "http://shop.example/payment/failure",
	}
}

func testTransaction(state domain.State) *domain.Transaction {
	return &domain.Transaction{
		ID:        "TX1",
		Target:    domain.Target{Type: domain.TargetOrder, ID: "ORD-1"},
		Amount:    45000,
		Currency:  "TZS",
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
}

func newHandler(t *testing.T, ctrl *gomock.Controller, poller StatusPoller) (*PaymentHandler, *mocks.MockCheckoutService, *mocks.MockReconciler, *mocks.MockTransactionStore) {
	t.Helper()
	checkoutSvc := mocks.NewMockCheckoutService(ctrl)
	reconciler := mocks.NewMockReconciler(ctrl)
	store := mocks.NewMockTransactionStore(ctrl)
	h := NewPaymentHandler(checkoutSvc, reconciler, poller, store, testFrontend(), zerolog.Nop())
	return h, checkoutSvc, reconciler, store
}

// --- Checkout ---

func TestInitiateCheckout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, checkoutSvc, _, _ := newHandler(t, ctrl, &fakePoller{})

	checkoutSvc.EXPECT().InitiateCheckout(gomock.Any(), ports.CheckoutRequest{
		Target:   domain.Target{Type: domain.TargetOrder, ID: "ORD-1"},
		Amount:   45000,
		Currency: "TZS",
	}).Return(&ports.CheckoutResult{
		TransactionID: "TX1",
		PaymentURL:    "https://pay.example/GW-1",
	}, nil)

	body, _ := json.Marshal(dto.CheckoutRequest{
		TargetType: "order",
		TargetID:   "ORD-1",
		Amount:     45000,
		Currency:   "TZS",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.InitiateCheckout(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data dto.CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TX1", resp.Data.TransactionID)
	assert.Equal(t, "https://pay.example/GW-1", resp.Data.PaymentURL)
}

func TestInitiateCheckout_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl, &fakePoller{})

	// target_type outside the allowed set fails binding validation
	body := []byte(`{"target_type":"gift_card","target_id":"GC-1","amount":100,"currency":"TZS"}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.InitiateCheckout(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiateCheckout_GatewayFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, checkoutSvc, _, _ := newHandler(t, ctrl, &fakePoller{})

	checkoutSvc.EXPECT().
		InitiateCheckout(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrGatewayFailure(errors.New("503")))

	body, _ := json.Marshal(dto.CheckoutRequest{
		TargetType: "order", TargetID: "ORD-1", Amount: 100, Currency: "TZS",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.InitiateCheckout(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// --- Webhook ---

func TestHandleWebhook_Applied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, reconciler, _ := newHandler(t, ctrl, &fakePoller{})

	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX1", domain.SourceWebhook, "COMPLETED").
		Return(ports.OutcomeApplied, nil)

	body := []byte(`{"order_id":"TX1","status":"COMPLETED"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.HandleWebhook(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.WebhookAck `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp.Data.Outcome)
}

func TestHandleWebhook_UnknownTransaction_StillAcked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, reconciler, _ := newHandler(t, ctrl, &fakePoller{})

	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX-unknown", domain.SourceWebhook, "COMPLETED").
		Return(ports.OutcomeNotFound, nil)

	body := []byte(`{"order_id":"TX-unknown","status":"COMPLETED"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.HandleWebhook(c)
	assert.Equal(t, http.StatusOK, w.Code, "the gateway must not retry an unknown id")
}

func TestHandleWebhook_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl, &fakePoller{})

	body := []byte(`{"order_id":"TX1"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.HandleWebhook(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhook_StoreError_AsksForRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, reconciler, _ := newHandler(t, ctrl, &fakePoller{})

	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX1", domain.SourceWebhook, "COMPLETED").
		Return(ports.Outcome(""), apperror.InternalError(errors.New("db down")))

	body := []byte(`{"order_id":"TX1","status":"COMPLETED"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.HandleWebhook(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "a transient failure is worth a gateway retry")
}

// --- Redirect ---

func redirectRequest(t *testing.T, h *PaymentHandler, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?"+rawQuery, nil)
	h.HandleRedirect(c)
	return w
}

func TestHandleRedirect_PaidGoesToSuccessPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{outcome: ports.OutcomeApplied, tx: testTransaction(domain.StatePaid)}
	h, _, reconciler, _ := newHandler(t, ctrl, poller)

	// The redirect hint is reconciled as untrusted before the gateway poll.
	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX1", domain.SourceRedirect, "success").
		Return(ports.OutcomeApplied, nil)

	w := redirectRequest(t, h, "order_id=TX1&status=success")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://shop.example/payment/success?status=success&transaction_id=TX1", w.Header().Get("Location"))
}

func TestHandleRedirect_FailedGoesToFailurePage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{outcome: ports.OutcomeApplied, tx: testTransaction(domain.StateFailed)}
	h, _, reconciler, _ := newHandler(t, ctrl, poller)

	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX1", domain.SourceRedirect, "failed").
		Return(ports.OutcomeApplied, nil)

	w := redirectRequest(t, h, "order_id=TX1&status=failed")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://shop.example/payment/failure?status=failed&transaction_id=TX1", w.Header().Get("Location"))
}

func TestHandleRedirect_StillProcessingGoesToRetryPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{outcome: ports.OutcomeRedundant, tx: testTransaction(domain.StateProcessing)}
	h, _, reconciler, _ := newHandler(t, ctrl, poller)

	reconciler.EXPECT().
		Reconcile(gomock.Any(), "TX1", domain.SourceRedirect, "success").
		Return(ports.OutcomeApplied, nil)

	w := redirectRequest(t, h, "order_id=TX1&status=success")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://shop.example/payment/retry?status=success&transaction_id=TX1", w.Header().Get("Location"))
}

func TestHandleRedirect_MissingOrderID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl, &fakePoller{})

	w := redirectRequest(t, h, "status=success")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://shop.example/payment/failure", w.Header().Get("Location"))
}

func TestHandleRedirect_PollFailureGoesToRetryPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{err: apperror.ErrGatewayFailure(errors.New("timeout"))}
	h, _, _, _ := newHandler(t, ctrl, poller)

	w := redirectRequest(t, h, "order_id=TX1")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://shop.example/payment/retry?transaction_id=TX1", w.Header().Get("Location"))
}

// --- Lookup and poll ---

func TestGetTransaction_Found(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, store := newHandler(t, ctrl, &fakePoller{})

	tx := testTransaction(domain.StatePaid)
	tx.AppliedSideEffects = []domain.SideEffectKind{domain.SideEffectOrderUpdated}
	store.EXPECT().GetByID(gomock.Any(), "TX1").Return(tx, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/TX1", nil)
	c.Params = gin.Params{{Key: "id", Value: "TX1"}}

	h.GetTransaction(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.TransactionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAID", resp.Data.State)
	assert.Equal(t, []string{"order_updated"}, resp.Data.AppliedSideEffects)
}

func TestGetTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, store := newHandler(t, ctrl, &fakePoller{})
	store.EXPECT().GetByID(gomock.Any(), "TX-missing").Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/TX-missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "TX-missing"}}

	h.GetTransaction(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPollTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{outcome: ports.OutcomeApplied, tx: testTransaction(domain.StatePaid)}
	h, _, _, _ := newHandler(t, ctrl, poller)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/TX1/poll", nil)
	c.Params = gin.Params{{Key: "id", Value: "TX1"}}

	h.PollTransaction(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.PollResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp.Data.Outcome)
	require.NotNil(t, resp.Data.Transaction)
	assert.Equal(t, "PAID", resp.Data.Transaction.State)
}

func TestPollTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poller := &fakePoller{outcome: ports.OutcomeNotFound}
	h, _, _, _ := newHandler(t, ctrl, poller)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/TX-missing/poll", nil)
	c.Params = gin.Params{{Key: "id", Value: "TX-missing"}}

	h.PollTransaction(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Health ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(context.Context) error { return f.err }
func (f fakeChecker) Name() string               { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"})(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis", err: errors.New("down")})(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
