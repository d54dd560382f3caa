package service

import (
	"context"
	"fmt"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// SideEffectDispatcherImpl implements ports.SideEffectDispatcher. Each kind
// independently checks "already done?" before acting and is marked applied
// only after the collaborator call succeeded, so a partial completion (order
// updated, notification failed) is retried by the sweep without re-running
// the successful actions. Collaborators are additionally idempotent at their
// own boundary, covering the window between action and mark.
type SideEffectDispatcherImpl struct {
	store    ports.TransactionStore
	targets  ports.TargetUpdater
	ledger   ports.LedgerService
	receipts ports.ReceiptIssuer
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewSideEffectDispatcher creates a new SideEffectDispatcherImpl.
func NewSideEffectDispatcher(
	store ports.TransactionStore,
	targets ports.TargetUpdater,
	ledger ports.LedgerService,
	receipts ports.ReceiptIssuer,
	notifier ports.Notifier,
	log zerolog.Logger,
) *SideEffectDispatcherImpl {
	return &SideEffectDispatcherImpl{
		store:    store,
		targets:  targets,
		ledger:   ledger,
		receipts: receipts,
		notifier: notifier,
		log:      log,
	}
}

// Apply executes every side effect owed for the transaction's terminal state.
// A failed or canceled payment always ends with the target marked and the
// user notified; silence is never an acceptable outcome of a terminal state.
func (d *SideEffectDispatcherImpl) Apply(ctx context.Context, tx *domain.Transaction) []ports.SideEffectResult {
	var results []ports.SideEffectResult

	for _, kind := range tx.OwedSideEffects() {
		if tx.SideEffectApplied(kind) {
			results = append(results, ports.SideEffectResult{Kind: kind, Skipped: true})
			continue
		}

		if err := d.execute(ctx, tx, kind); err != nil {
			// Left unmarked so the retry sweep attempts it again.
			results = append(results, ports.SideEffectResult{Kind: kind, Err: err})
			continue
		}

		already, err := d.store.MarkSideEffectApplied(ctx, tx.ID, kind)
		if err != nil {
			// The action succeeded but the mark was lost. The sweep will
			// re-run the kind; the collaborator's own idempotency absorbs it.
			d.log.Error().Err(err).
				Str("tx_id", tx.ID).
				Str("kind", string(kind)).
				Msg("side effect executed but mark failed")
			results = append(results, ports.SideEffectResult{Kind: kind, Applied: true, Err: err})
			continue
		}
		if already {
			results = append(results, ports.SideEffectResult{Kind: kind, Skipped: true})
			continue
		}

		d.log.Info().
			Str("tx_id", tx.ID).
			Str("kind", string(kind)).
			Str("state", string(tx.State)).
			Msg("side effect applied")
		results = append(results, ports.SideEffectResult{Kind: kind, Applied: true})
	}

	return results
}

func (d *SideEffectDispatcherImpl) execute(ctx context.Context, tx *domain.Transaction, kind domain.SideEffectKind) error {
	switch kind {
	case domain.SideEffectOrderUpdated:
		if tx.State == domain.StatePaid {
			return d.targets.MarkPaid(ctx, tx.Target, tx.ID)
		}
		return d.targets.MarkFailed(ctx, tx.Target, tx.ID)
	case domain.SideEffectWalletCredit:
		return d.ledger.Credit(ctx, tx)
	case domain.SideEffectReceiptIssued:
		return d.receipts.IssueReceipt(ctx, tx)
	case domain.SideEffectNotified:
		return d.notifier.NotifyOutcome(ctx, tx)
	default:
		return fmt.Errorf("unknown side effect kind %q", kind)
	}
}
