package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func platformConfig(baseURL string) config.PlatformConfig {
	return config.PlatformConfig{
		BaseURL: baseURL,
		APIKey:  "platform-key",
		Timeout: 2 * time.Second,
	}
}

func paidTx() *domain.Transaction {
	return &domain.Transaction{
		ID:       "TX1",
		Target:   domain.Target{Type: domain.TargetOrder, ID: "ORD-1"},
		Amount:   45000,
		Currency: "TZS",
		State:    domain.StatePaid,
	}
}

func TestNotifier_NotifyOutcome(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/notifications", r.URL.Path)
		assert.Equal(t, "platform-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewNotifier(platformConfig(srv.URL), nil, zerolog.Nop())
	require.NoError(t, n.NotifyOutcome(context.Background(), paidTx()))

	assert.Equal(t, "TX1", got["transaction_id"])
	assert.Equal(t, "PAID", got["state"])
	assert.Equal(t, "order", got["target_type"])
}

func TestNotifier_DuplicateDelivery_TreatedAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "already notified", http.StatusConflict)
	}))
	defer srv.Close()

	n := NewNotifier(platformConfig(srv.URL), nil, zerolog.Nop())
	require.NoError(t, n.NotifyOutcome(context.Background(), paidTx()))
}

func TestNotifier_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(platformConfig(srv.URL), nil, zerolog.Nop())
	require.Error(t, n.NotifyOutcome(context.Background(), paidTx()))
}

func TestReceiptIssuer_IssueReceipt(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/receipts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ri := NewReceiptIssuer(platformConfig(srv.URL), nil, zerolog.Nop())
	require.NoError(t, ri.IssueReceipt(context.Background(), paidTx()))
	assert.Equal(t, "TX1", got["transaction_id"])
	assert.EqualValues(t, 45000, got["amount"])
}

func TestReceiptIssuer_AlreadyIssued_TreatedAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "receipt exists for TX1", http.StatusConflict)
	}))
	defer srv.Close()

	ri := NewReceiptIssuer(platformConfig(srv.URL), nil, zerolog.Nop())
	require.NoError(t, ri.IssueReceipt(context.Background(), paidTx()))
}
