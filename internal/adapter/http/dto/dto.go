package dto

// CheckoutRequest is the request body for initiating a payment.
type CheckoutRequest struct {
	TargetType  string `json:"target_type" binding:"required,oneof=order parcel_order subscription"`
	TargetID    string `json:"target_id" binding:"required,max=64"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Description string `json:"description,omitempty" binding:"max=255"`
}

// CheckoutResponse is the response body for a successfully initiated payment.
type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
}

// WebhookNotification is the gateway's push payload. order_id carries our
// transaction id; the raw status string is normalized downstream.
type WebhookNotification struct {
	OrderID        string `json:"order_id" binding:"required"`
	Status         string `json:"status" binding:"required"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
}

// WebhookAck is returned to the gateway for every authenticated push.
type WebhookAck struct {
	OrderID string `json:"order_id"`
	Outcome string `json:"outcome"`
}

// EventResponse is one audit trail entry.
type EventResponse struct {
	Source     string `json:"source"`
	RawStatus  string `json:"raw_status"`
	Normalized string `json:"normalized"`
	Accepted   bool   `json:"accepted"`
	Outcome    string `json:"outcome"`
	ObservedAt string `json:"observed_at"`
}

// TransactionResponse is the response body for transaction lookups.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	TargetType         string          `json:"target_type"`
	TargetID           string          `json:"target_id"`
	Amount             int64           `json:"amount"`
	Currency           string          `json:"currency"`
	State              string          `json:"state"`
	GatewayOrderID     *string         `json:"gateway_order_id,omitempty"`
	CreatedAt          string          `json:"created_at"`
	FinalizedAt        *string         `json:"finalized_at,omitempty"`
	AppliedSideEffects []string        `json:"applied_side_effects,omitempty"`
	Events             []EventResponse `json:"events,omitempty"`
}

// PollResponse is the response body for an on-demand status poll.
type PollResponse struct {
	Outcome     string               `json:"outcome"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
