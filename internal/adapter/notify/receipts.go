package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/core/domain"

	"github.com/rs/zerolog"
)

// receiptRequest is the JSON body posted to the fiscal receipt service.
type receiptRequest struct {
	TransactionID string `json:"transaction_id"`
	TargetType    string `json:"target_type"`
	TargetID      string `json:"target_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// ReceiptIssuer implements ports.ReceiptIssuer against the platform's fiscal
// receipt service. Receipts are keyed by transaction id on the service side;
// a repeated issue request comes back 409 and is treated as success.
type ReceiptIssuer struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewReceiptIssuer creates a ReceiptIssuer. A nil httpClient gets a default
// client with the configured timeout.
func NewReceiptIssuer(cfg config.PlatformConfig, httpClient HTTPClient, log zerolog.Logger) *ReceiptIssuer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ReceiptIssuer{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        log,
	}
}

// IssueReceipt requests a fiscal receipt for a paid transaction.
func (r *ReceiptIssuer) IssueReceipt(ctx context.Context, tx *domain.Transaction) error {
	body, err := json.Marshal(receiptRequest{
		TransactionID: tx.ID,
		TargetType:    string(tx.Target.Type),
		TargetID:      tx.Target.ID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	})
	if err != nil {
		return fmt.Errorf("marshal receipt request: %w", err)
	}

	if err := post(ctx, r.httpClient, r.baseURL+"/internal/receipts", r.apiKey, body); err != nil {
		return fmt.Errorf("issue receipt for %s: %w", tx.ID, err)
	}

	r.log.Info().Str("tx_id", tx.ID).Msg("fiscal receipt issued")
	return nil
}
