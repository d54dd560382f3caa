package service

import (
	"context"
	"fmt"
	"time"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// nonTerminalStates are the valid from-states of any transition.
var nonTerminalStates = []domain.State{domain.StatePending, domain.StateProcessing}

// ReconcilerImpl implements ports.Reconciler. It is the single serialized
// decision point for status reports from all three channels; correctness
// under concurrent delivery rests on the store's atomic CompareAndTransition
// plus the terminal-state-is-absorbing rule, which make the final outcome
// independent of arrival order.
type ReconcilerImpl struct {
	store      ports.TransactionStore
	dispatcher ports.SideEffectDispatcher
	log        zerolog.Logger
}

// NewReconciler creates a new ReconcilerImpl.
func NewReconciler(store ports.TransactionStore, dispatcher ports.SideEffectDispatcher, log zerolog.Logger) *ReconcilerImpl {
	return &ReconcilerImpl{store: store, dispatcher: dispatcher, log: log}
}

// Reconcile normalizes a raw status report, decides whether it changes
// anything, and applies at most one atomic transition plus idempotent
// side-effect dispatch.
//
// Every report for a known transaction lands in the audit trail, accepted or
// not. A terminal state is never overwritten by a later report, even a
// conflicting one: first terminal wins.
func (r *ReconcilerImpl) Reconcile(ctx context.Context, id string, source domain.Source, rawStatus string) (ports.Outcome, error) {
	normalized := domain.NormalizeStatus(source, rawStatus)

	tx, err := r.store.GetByID(ctx, id)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("load transaction: %w", err))
	}
	if tx == nil {
		// External retries of stale/unknown ids are routine; the ingress
		// adapter decides how to answer, typically a best-effort no-op.
		r.log.Warn().
			Str("tx_id", id).
			Str("source", string(source)).
			Str("raw_status", rawStatus).
			Msg("status report for unknown transaction")
		return ports.OutcomeNotFound, nil
	}

	outcome, fresh, err := r.decide(ctx, tx, normalized)
	if err != nil {
		return "", err
	}

	event := domain.ReconcileEvent{
		Source:     source,
		RawStatus:  rawStatus,
		Normalized: normalized,
		Accepted:   outcome == ports.OutcomeApplied || outcome == ports.OutcomeRedundant,
		Outcome:    string(outcome),
		ObservedAt: time.Now().UTC(),
	}
	if appendErr := r.store.AppendEvent(ctx, id, event); appendErr != nil {
		// The decision already landed; a lost audit entry is an operational
		// problem, not a reconciliation failure.
		r.log.Error().Err(appendErr).Str("tx_id", id).Msg("failed to append reconcile event")
	}

	switch outcome {
	case ports.OutcomeRejected:
		r.log.Warn().
			Str("tx_id", id).
			Str("source", string(source)).
			Str("raw_status", rawStatus).
			Str("reported", string(normalized)).
			Str("state", string(fresh.State)).
			Msg("conflicting report rejected, terminal state is never overwritten")
	case ports.OutcomeApplied:
		r.log.Info().
			Str("tx_id", id).
			Str("source", string(source)).
			Str("from", string(tx.State)).
			Str("to", string(fresh.State)).
			Msg("transaction state transitioned")
		if fresh.IsTerminal() {
			r.dispatchSideEffects(ctx, fresh)
		}
	}

	return outcome, nil
}

// decide evaluates the normalized report against the current state and
// attempts the transition. When a concurrent caller moves the state first
// (the CompareAndTransition precondition fails), the decision is retried once
// against the fresh state rather than erroring.
func (r *ReconcilerImpl) decide(ctx context.Context, tx *domain.Transaction, to domain.State) (ports.Outcome, *domain.Transaction, error) {
	for attempt := 0; ; attempt++ {
		if tx.State == to {
			return ports.OutcomeRedundant, tx, nil
		}
		if tx.IsTerminal() {
			return ports.OutcomeRejected, tx, nil
		}

		applied, fresh, err := r.store.CompareAndTransition(ctx, tx.ID, nonTerminalStates, to)
		if err != nil {
			return "", nil, apperror.InternalError(fmt.Errorf("transition %s -> %s: %w", tx.State, to, err))
		}
		if applied {
			return ports.OutcomeApplied, fresh, nil
		}
		if fresh == nil {
			return "", nil, apperror.InternalError(fmt.Errorf("transaction %s vanished during transition", tx.ID))
		}
		if attempt > 0 {
			// Two precondition failures in a row: settle by the fresh state.
			if fresh.State == to {
				return ports.OutcomeRedundant, fresh, nil
			}
			return ports.OutcomeRejected, fresh, nil
		}
		tx = fresh
	}
}

// dispatchSideEffects runs the dispatcher synchronously. A failed side effect
// is reported and retried by the sweep; it never rolls the transition back.
func (r *ReconcilerImpl) dispatchSideEffects(ctx context.Context, tx *domain.Transaction) {
	for _, res := range r.dispatcher.Apply(ctx, tx) {
		if res.Err != nil {
			effErr := apperror.ErrSideEffect(string(res.Kind), res.Err)
			r.log.Error().
				Err(effErr).
				Str("tx_id", tx.ID).
				Str("kind", string(res.Kind)).
				Msg("side effect failed, left unmarked for retry sweep")
		}
	}
}
