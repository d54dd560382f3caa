package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the third-party payment gateway over HTTPS. Requests are
// authenticated with the access key and an HMAC-SHA256 signature over the
// request body (or the order id for status reads).
type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a gateway client from configuration. A nil httpClient
// gets a default client with the configured timeout.
func NewClient(cfg config.GatewayConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		accessKey:  cfg.AccessKey,
		secretKey:  cfg.SecretKey,
		httpClient: httpClient,
		log:        log,
	}
}

type createOrderRequest struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type createOrderResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

type orderStatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// CreateCheckout registers the payment with the gateway and returns the
// hosted payment page URL. The order id sent is our transaction id, which is
// how pushes and polls correlate back to the transaction.
func (c *Client) CreateCheckout(ctx context.Context, order ports.CheckoutOrder) (*ports.CheckoutSession, error) {
	body, err := json.Marshal(createOrderRequest{
		OrderID:     order.TransactionID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: order.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal create order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, body)

	var resp createOrderResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentURL == "" {
		return nil, fmt.Errorf("gateway returned no payment url for order %s", order.TransactionID)
	}

	c.log.Info().
		Str("tx_id", order.TransactionID).
		Str("gateway_order_id", resp.OrderID).
		Msg("gateway checkout created")

	return &ports.CheckoutSession{
		GatewayOrderID: resp.OrderID,
		PaymentURL:     resp.PaymentURL,
	}, nil
}

// GetOrderStatus fetches the gateway's current raw status string for the
// order keyed by our transaction id.
func (c *Client) GetOrderStatus(ctx context.Context, transactionID string) (string, error) {
	url := fmt.Sprintf("%s/v1/orders/%s", c.baseURL, transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create status request: %w", err)
	}
	c.authorize(req, []byte(transactionID))

	var resp orderStatusResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.Status == "" {
		return "", fmt.Errorf("gateway returned empty status for order %s", transactionID)
	}
	return resp.Status, nil
}

func (c *Client) authorize(req *http.Request, signed []byte) {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write(signed)
	req.Header.Set("X-Access-Key", c.accessKey)
	req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway responded %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
