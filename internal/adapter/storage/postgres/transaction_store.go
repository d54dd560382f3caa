package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const txColumns = `id, target_type, target_id, amount, currency, gateway_order_id,
	state, created_at, updated_at, finalized_at`

// TransactionStore implements ports.TransactionStore. Atomicity of the state
// machine rests on two statements: the conditional UPDATE in
// CompareAndTransition and the ON CONFLICT insert in MarkSideEffectApplied.
// Everything else is plain reads and appends.
type TransactionStore struct {
	pool Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Create inserts a new transaction row.
func (r *TransactionStore) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Target.Type, t.Target.ID, t.Amount, t.Currency,
		t.GatewayOrderID, t.State, t.CreatedAt, t.UpdatedAt, t.FinalizedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrDuplicateTransactionID(t.ID)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction with its applied side effects and audit
// trail. Returns nil, nil when the id is unknown.
func (r *TransactionStore) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`

	t, err := r.scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil || t == nil {
		return t, err
	}
	if err := r.loadSideEffects(ctx, t); err != nil {
		return nil, err
	}
	if err := r.loadEvents(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByTarget fetches all transactions for a target, newest first.
func (r *TransactionStore) GetByTarget(ctx context.Context, target domain.Target) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions
		WHERE target_type = $1 AND target_id = $2 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, target.Type, target.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by target: %w", err)
	}
	return r.collect(ctx, rows, true)
}

// SetGatewayOrderID records the gateway's order reference after checkout
// creation.
func (r *TransactionStore) SetGatewayOrderID(ctx context.Context, id string, gatewayOrderID string) error {
	query := `UPDATE transactions SET gateway_order_id = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, gatewayOrderID, id)
	if err != nil {
		return fmt.Errorf("set gateway order id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrTransactionNotFound(id)
	}
	return nil
}

// CompareAndTransition performs the state transition as one conditional
// UPDATE. The precondition and the write share a single statement, so two
// concurrent callers can never both see the old state: exactly one wins and
// the loser gets applied=false with the fresh row.
func (r *TransactionStore) CompareAndTransition(ctx context.Context, id string, from []domain.State, to domain.State) (bool, *domain.Transaction, error) {
	query := `UPDATE transactions
		SET state = $2, updated_at = NOW(),
			finalized_at = CASE WHEN $3 THEN NOW() ELSE finalized_at END
		WHERE id = $1 AND state = ANY($4)
		RETURNING ` + txColumns

	t, err := r.scanTransaction(r.pool.QueryRow(ctx, query, id, to, to.IsTerminal(), statesToStrings(from)))
	if err != nil {
		return false, nil, fmt.Errorf("compare and transition: %w", err)
	}
	if t != nil {
		if err := r.loadSideEffects(ctx, t); err != nil {
			return false, nil, err
		}
		return true, t, nil
	}

	// Precondition failed (or the row is gone). Hand back the fresh state so
	// the caller can settle the outcome.
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return false, nil, err
	}
	return false, fresh, nil
}

// MarkSideEffectApplied records a side-effect kind as executed. The primary
// key on (transaction_id, kind) makes the insert a natural test-and-set:
// zero rows affected means someone recorded it first.
func (r *TransactionStore) MarkSideEffectApplied(ctx context.Context, id string, kind domain.SideEffectKind) (bool, error) {
	query := `INSERT INTO applied_side_effects (transaction_id, kind, applied_at)
		VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, id, kind)
	if err != nil {
		return false, fmt.Errorf("mark side effect applied: %w", err)
	}
	return tag.RowsAffected() == 0, nil
}

// AppendEvent appends one audit trail entry. Entries are never updated or
// deleted.
func (r *TransactionStore) AppendEvent(ctx context.Context, id string, event domain.ReconcileEvent) error {
	query := `INSERT INTO transaction_events (transaction_id, source, raw_status, normalized, accepted, outcome, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		id, event.Source, event.RawStatus, event.Normalized,
		event.Accepted, event.Outcome, event.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("append transaction event: %w", err)
	}
	return nil
}

// Delete removes a PENDING row whose gateway checkout failed. The state guard
// makes it impossible to delete a transaction that ever left PENDING.
func (r *TransactionStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM transactions WHERE id = $1 AND state = $2`

	tag, err := r.pool.Exec(ctx, query, id, domain.StatePending)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrTransactionNotFound(id)
	}
	return nil
}

// ListStalePending returns non-terminal transactions last touched before the
// cutoff, oldest first.
func (r *TransactionStore) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions
		WHERE state = ANY($1) AND updated_at <= $2
		ORDER BY updated_at ASC LIMIT $3`

	nonTerminal := []string{string(domain.StatePending), string(domain.StateProcessing)}
	rows, err := r.pool.Query(ctx, query, nonTerminal, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale transactions: %w", err)
	}
	return r.collect(ctx, rows, false)
}

// ListUnfinishedSideEffects returns terminal transactions finalized before
// the cutoff that carry fewer applied side effects than their state owes.
// The expected counts mirror the domain rule: a PAID transaction owes three
// kinds, any other terminal state owes two.
func (r *TransactionStore) ListUnfinishedSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT t.id, t.target_type, t.target_id, t.amount, t.currency, t.gateway_order_id,
			t.state, t.created_at, t.updated_at, t.finalized_at
		FROM transactions t
		LEFT JOIN applied_side_effects e ON e.transaction_id = t.id
		WHERE t.state = ANY($1) AND t.finalized_at <= $2
		GROUP BY t.id
		HAVING COUNT(e.kind) < CASE WHEN t.state = $3 THEN 3 ELSE 2 END
		ORDER BY t.finalized_at ASC LIMIT $4`

	rows, err := r.pool.Query(ctx, query, statesToStrings(domain.TerminalStates), olderThan, domain.StatePaid, limit)
	if err != nil {
		return nil, fmt.Errorf("list unfinished side effects: %w", err)
	}
	return r.collect(ctx, rows, true)
}

// collect drains rows into transactions, optionally loading each one's
// applied side effects.
func (r *TransactionStore) collect(ctx context.Context, rows pgx.Rows, withSideEffects bool) ([]domain.Transaction, error) {
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.Target.Type, &t.Target.ID, &t.Amount, &t.Currency,
			&t.GatewayOrderID, &t.State, &t.CreatedAt, &t.UpdatedAt, &t.FinalizedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	if withSideEffects {
		for i := range txns {
			if err := r.loadSideEffects(ctx, &txns[i]); err != nil {
				return nil, err
			}
		}
	}
	return txns, nil
}

func (r *TransactionStore) loadSideEffects(ctx context.Context, t *domain.Transaction) error {
	query := `SELECT kind FROM applied_side_effects WHERE transaction_id = $1 ORDER BY applied_at ASC`

	rows, err := r.pool.Query(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("load applied side effects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind domain.SideEffectKind
		if err := rows.Scan(&kind); err != nil {
			return fmt.Errorf("scan side effect kind: %w", err)
		}
		t.AppliedSideEffects = append(t.AppliedSideEffects, kind)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate side effect rows: %w", err)
	}
	return nil
}

func (r *TransactionStore) loadEvents(ctx context.Context, t *domain.Transaction) error {
	query := `SELECT source, raw_status, normalized, accepted, outcome, observed_at
		FROM transaction_events WHERE transaction_id = $1 ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("load transaction events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ev := domain.ReconcileEvent{}
		err := rows.Scan(&ev.Source, &ev.RawStatus, &ev.Normalized, &ev.Accepted, &ev.Outcome, &ev.ObservedAt)
		if err != nil {
			return fmt.Errorf("scan transaction event: %w", err)
		}
		t.Events = append(t.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transaction events: %w", err)
	}
	return nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionStore) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Target.Type, &t.Target.ID, &t.Amount, &t.Currency,
		&t.GatewayOrderID, &t.State, &t.CreatedAt, &t.UpdatedAt, &t.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func statesToStrings(states []domain.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
