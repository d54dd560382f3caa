package postgres

import (
	"context"
	"fmt"

	"payment-reconciliation-engine/internal/core/domain"
)

// TargetRepo implements ports.TargetUpdater against the platform's order,
// parcel order and subscription tables. Writing the transaction id next to
// the status makes a repeated mark a visible no-op rather than a new change.
type TargetRepo struct {
	pool Pool
}

// NewTargetRepo creates a new TargetRepo.
func NewTargetRepo(pool Pool) *TargetRepo {
	return &TargetRepo{pool: pool}
}

// MarkPaid flips the target's payment status to PAID.
func (r *TargetRepo) MarkPaid(ctx context.Context, target domain.Target, transactionID string) error {
	return r.mark(ctx, target, transactionID, "PAID")
}

// MarkFailed flips the target's payment status to FAILED.
func (r *TargetRepo) MarkFailed(ctx context.Context, target domain.Target, transactionID string) error {
	return r.mark(ctx, target, transactionID, "FAILED")
}

func (r *TargetRepo) mark(ctx context.Context, target domain.Target, transactionID string, status string) error {
	table, err := tableFor(target.Type)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET payment_status = $1, payment_transaction_id = $2, updated_at = NOW()
		WHERE id = $3`, table)

	tag, err := r.pool.Exec(ctx, query, status, transactionID, target.ID)
	if err != nil {
		return fmt.Errorf("mark %s %s: %w", target.Type, status, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s not found: %s", target.Type, target.ID)
	}
	return nil
}

func tableFor(t domain.TargetType) (string, error) {
	switch t {
	case domain.TargetOrder:
		return "orders", nil
	case domain.TargetParcelOrder:
		return "parcel_orders", nil
	case domain.TargetSubscription:
		return "subscriptions", nil
	default:
		return "", fmt.Errorf("unknown target type %q", t)
	}
}
