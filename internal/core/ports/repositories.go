package ports

import (
	"context"
	"time"

	"payment-reconciliation-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// TransactionStore is the durable record of payment attempts. It is the only
// shared mutable resource in the engine; every state change funnels through
// CompareAndTransition.
type TransactionStore interface {
	// Create inserts a new PENDING transaction. A duplicate id is surfaced
	// as a retryable apperror (unique constraint), not swallowed.
	Create(ctx context.Context, tx *domain.Transaction) error

	// GetByID returns nil, nil when the id is unknown.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByTarget looks transactions up from the order/subscription side.
	GetByTarget(ctx context.Context, target domain.Target) ([]domain.Transaction, error)

	// SetGatewayOrderID records the external reference returned by the
	// gateway at checkout creation.
	SetGatewayOrderID(ctx context.Context, id string, gatewayOrderID string) error

	// CompareAndTransition atomically moves the transaction from one of the
	// given states to toState. applied=false with a non-nil transaction means
	// the precondition failed and the returned row carries the fresh state.
	CompareAndTransition(ctx context.Context, id string, from []domain.State, to domain.State) (applied bool, tx *domain.Transaction, err error)

	// MarkSideEffectApplied records that a side-effect kind has executed.
	// already=true means it was recorded before (idempotent no-op).
	MarkSideEffectApplied(ctx context.Context, id string, kind domain.SideEffectKind) (already bool, err error)

	// AppendEvent appends one entry to the immutable audit trail.
	AppendEvent(ctx context.Context, id string, event domain.ReconcileEvent) error

	// Delete removes a transaction row. Used only to roll back a PENDING row
	// whose gateway checkout call failed; terminal rows are never deleted.
	Delete(ctx context.Context, id string) error

	// ListStalePending returns non-terminal transactions last touched before
	// the cutoff, for the status poll job.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)

	// ListUnfinishedSideEffects returns terminal transactions finalized
	// before the cutoff that still miss at least one side-effect kind.
	ListUnfinishedSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)
}

// MutexStore provides scoped acquisition of a short-lived named mutex with a
// bounded wait. Acquire returns acquired=false when the lock could not be
// obtained within maxWait; callers are expected to fall back rather than
// block. The release func is safe to call on all exit paths and only removes
// the lock if this caller still holds it.
type MutexStore interface {
	Acquire(ctx context.Context, name string, ttl time.Duration, maxWait time.Duration) (release func(context.Context), acquired bool, err error)
}

// LedgerTx abstracts the wallet repository's row-lock queries so the same
// code path serves pgx transactions and test fakes.
type LedgerTx = pgx.Tx

// WalletRepository persists user wallet balances for subscription top-ups.
// The ForUpdate variant is used inside transaction blocks for pessimistic
// locking.
type WalletRepository interface {
	GetByOwnerForUpdate(ctx context.Context, tx LedgerTx, ownerID string, currency string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx LedgerTx, walletID string, balance int64) error
	CreditExists(ctx context.Context, transactionID string) (bool, error)
	RecordCredit(ctx context.Context, tx LedgerTx, transactionID string, walletID string, amount int64) error
}

// DBTransactor provides database transaction management for multi-statement
// ledger writes.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TargetUpdater marks the target entity of a transaction paid or failed.
// Implementations own the order/parcel/subscription status columns; the
// engine never touches those tables directly.
type TargetUpdater interface {
	MarkPaid(ctx context.Context, target domain.Target, transactionID string) error
	MarkFailed(ctx context.Context, target domain.Target, transactionID string) error
}
