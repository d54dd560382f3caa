package domain

import (
	"time"
)

// State represents the lifecycle state of a payment transaction.
type State string

const (
	StatePending    State = "PENDING"
	StateProcessing State = "PROCESSING"
	StatePaid       State = "PAID"
	StateCanceled   State = "CANCELED"
	StateFailed     State = "FAILED"
)

// TerminalStates lists the absorbing states. Once a transaction reaches one
// of these, no further transition is permitted.
var TerminalStates = []State{StatePaid, StateCanceled, StateFailed}

// IsTerminal returns true for PAID, CANCELED and FAILED.
func (s State) IsTerminal() bool {
	return s == StatePaid || s == StateCanceled || s == StateFailed
}

// Source identifies which channel delivered a status report.
type Source string

const (
	SourceWebhook  Source = "webhook"
	SourceRedirect Source = "redirect"
	SourcePoll     Source = "poll"
)

// SideEffectKind identifies one consequence of a terminal transition.
type SideEffectKind string

const (
	SideEffectOrderUpdated  SideEffectKind = "order_updated"
	SideEffectWalletCredit  SideEffectKind = "wallet_credited"
	SideEffectReceiptIssued SideEffectKind = "receipt_issued"
	SideEffectNotified      SideEffectKind = "notified"
)

// Transaction is the durable record of one payment attempt. The id doubles
// as the idempotency key for every downstream operation; amount and currency
// are fixed at creation and never mutated.
type Transaction struct {
	ID             string     `json:"id"`
	Target         Target     `json:"target"`
	Amount         int64      `json:"amount"` // In smallest currency unit
	Currency       string     `json:"currency"`
	GatewayOrderID *string    `json:"gateway_order_id,omitempty"`
	State          State      `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	FinalizedAt    *time.Time `json:"finalized_at,omitempty"`

	// AppliedSideEffects is the set of side-effect kinds already executed,
	// used for exactly-once enforcement.
	AppliedSideEffects []SideEffectKind `json:"applied_side_effects,omitempty"`

	// Events is the append-only audit trail of every status report received.
	Events []ReconcileEvent `json:"events,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.State.IsTerminal()
}

// SideEffectApplied reports whether the given kind has already been executed.
func (t *Transaction) SideEffectApplied(kind SideEffectKind) bool {
	for _, k := range t.AppliedSideEffects {
		if k == kind {
			return true
		}
	}
	return false
}

// OwedSideEffects returns the side-effect kinds this transaction owes for
// its current state. Wallet credits apply only to subscription top-ups, and
// receipts only to targets that carry a payable fee.
func (t *Transaction) OwedSideEffects() []SideEffectKind {
	var owed []SideEffectKind
	for _, k := range SideEffectsFor(t.State) {
		switch k {
		case SideEffectWalletCredit:
			if t.Target.Type != TargetSubscription {
				continue
			}
		case SideEffectReceiptIssued:
			if !t.Target.CarriesPayableFee() {
				continue
			}
		}
		owed = append(owed, k)
	}
	return owed
}

// MissingSideEffects returns the owed kinds that have not been applied yet.
func (t *Transaction) MissingSideEffects() []SideEffectKind {
	var missing []SideEffectKind
	for _, k := range t.OwedSideEffects() {
		if !t.SideEffectApplied(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// SideEffectsFor returns the side-effect kinds owed for a terminal state.
// Returns nil for non-terminal states.
func SideEffectsFor(s State) []SideEffectKind {
	switch s {
	case StatePaid:
		return []SideEffectKind{
			SideEffectOrderUpdated,
			SideEffectWalletCredit,
			SideEffectReceiptIssued,
			SideEffectNotified,
		}
	case StateCanceled, StateFailed:
		return []SideEffectKind{
			SideEffectOrderUpdated,
			SideEffectNotified,
		}
	default:
		return nil
	}
}

// ReconcileEvent is one entry of the audit trail: a single status report from
// a single channel, and whether the reconciler accepted it. Entries are
// immutable once appended.
type ReconcileEvent struct {
	Source     Source    `json:"source"`
	RawStatus  string    `json:"raw_status"`
	Normalized State     `json:"normalized"`
	Accepted   bool      `json:"accepted"`
	Outcome    string    `json:"outcome"`
	ObservedAt time.Time `json:"observed_at"`
}
