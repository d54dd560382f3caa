package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/core/domain"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// outcomeNotification is the JSON body posted to the notification service.
// The transaction id is its dedup key: the service drops repeats, so a
// re-delivered notification never reaches the user twice.
type outcomeNotification struct {
	TransactionID string `json:"transaction_id"`
	TargetType    string `json:"target_type"`
	TargetID      string `json:"target_id"`
	State         string `json:"state"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Timestamp     int64  `json:"timestamp"`
}

// Notifier implements ports.Notifier against the platform's notification
// service.
type Notifier struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewNotifier creates a Notifier. A nil httpClient gets a default client
// with the configured timeout.
func NewNotifier(cfg config.PlatformConfig, httpClient HTTPClient, log zerolog.Logger) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Notifier{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        log,
	}
}

// NotifyOutcome tells the notification service about a terminal transaction.
func (n *Notifier) NotifyOutcome(ctx context.Context, tx *domain.Transaction) error {
	body, err := json.Marshal(outcomeNotification{
		TransactionID: tx.ID,
		TargetType:    string(tx.Target.Type),
		TargetID:      tx.Target.ID,
		State:         string(tx.State),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Timestamp:     time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := post(ctx, n.httpClient, n.baseURL+"/internal/notifications", n.apiKey, body); err != nil {
		return fmt.Errorf("deliver notification for %s: %w", tx.ID, err)
	}

	n.log.Info().
		Str("tx_id", tx.ID).
		Str("state", string(tx.State)).
		Msg("outcome notification delivered")
	return nil
}

func post(ctx context.Context, client HTTPClient, url, apiKey string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 409 means the service already processed this transaction id.
	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("service responded %d: %s", resp.StatusCode, msg)
	}
	return nil
}
