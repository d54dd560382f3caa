package ports

import (
	"context"

	"payment-reconciliation-engine/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// IDGenerator produces globally unique transaction reference strings. It
// never fails to hand back a usable id; coordination failures degrade to a
// statistically unique fallback instead of blocking checkout.
type IDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// GatewayClient is the capability the engine calls through to reach the
// third-party payment gateway. Signing and transport live behind this
// interface, not in the engine.
type GatewayClient interface {
	// CreateCheckout registers a payment order with the gateway and returns
	// the gateway's order reference plus the URL the user completes payment at.
	CreateCheckout(ctx context.Context, req CheckoutOrder) (*CheckoutSession, error)

	// GetOrderStatus returns the gateway's current raw status string for a
	// transaction id.
	GetOrderStatus(ctx context.Context, transactionID string) (string, error)
}

// CheckoutOrder is the gateway-facing view of a new payment.
type CheckoutOrder struct {
	TransactionID string
	Amount        int64
	Currency      string
	Description   string
}

// CheckoutSession is the gateway's answer to a checkout creation.
type CheckoutSession struct {
	GatewayOrderID string
	PaymentURL     string
}

// Outcome classifies the result of one Reconcile call.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeRedundant Outcome = "redundant"
	OutcomeRejected  Outcome = "rejected"
	OutcomeNotFound  Outcome = "not_found"
)

// Reconciler is the single serialized decision point for status reports.
// Any of the three channels feeds its report through Reconcile; the outcome
// is order-independent for conflicting terminal reports (first terminal wins).
type Reconciler interface {
	Reconcile(ctx context.Context, id string, source domain.Source, rawStatus string) (Outcome, error)
}

// SideEffectResult records the attempt of one side-effect kind.
type SideEffectResult struct {
	Kind    domain.SideEffectKind
	Applied bool // true if executed by this call
	Skipped bool // true if already applied earlier
	Err     error
}

// SideEffectDispatcher idempotently applies the consequences of a terminal
// transition. Each kind independently checks "already done?" before acting;
// partial completion is tolerated and retried by the sweep.
type SideEffectDispatcher interface {
	Apply(ctx context.Context, tx *domain.Transaction) []SideEffectResult
}

// CheckoutService drives checkout initiation for order/subscription flows.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// CheckoutRequest holds validated input for checkout initiation.
type CheckoutRequest struct {
	Target      domain.Target
	Amount      int64
	Currency    string
	Description string
}

// CheckoutResult is returned to the initiating flow.
type CheckoutResult struct {
	TransactionID string
	PaymentURL    string
}

// LedgerService credits the wallet tied to a paid subscription top-up.
// Credit is idempotent at the ledger boundary: a credit already recorded for
// the transaction id is a no-op regardless of the engine's own bookkeeping.
type LedgerService interface {
	Credit(ctx context.Context, tx *domain.Transaction) error
}

// ReceiptIssuer issues a fiscal receipt for a paid transaction. The issuer
// itself checks whether a receipt already exists for the target before
// issuing, independent of the engine's bookkeeping.
type ReceiptIssuer interface {
	IssueReceipt(ctx context.Context, tx *domain.Transaction) error
}

// Notifier delivers the user-facing outcome notification for a terminal
// transaction.
type Notifier interface {
	NotifyOutcome(ctx context.Context, tx *domain.Transaction) error
}
