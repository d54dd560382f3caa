package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetByOwnerForUpdate fetches a wallet by owner and currency with pessimistic
// locking. This MUST be called within a transaction.
func (r *WalletRepo) GetByOwnerForUpdate(ctx context.Context, tx ports.LedgerTx, ownerID string, currency string) (*domain.Wallet, error) {
	query := `SELECT id, owner_id, currency, balance, created_at, updated_at
		FROM wallets WHERE owner_id = $1 AND currency = $2 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, ownerID, currency).Scan(
		&w.ID, &w.OwnerID, &w.Currency, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx ports.LedgerTx, walletID string, balance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// CreditExists reports whether a credit was already recorded for the
// transaction id.
func (r *WalletRepo) CreditExists(ctx context.Context, transactionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wallet_credits WHERE transaction_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check credit exists: %w", err)
	}
	return exists, nil
}

// RecordCredit writes the credit record keyed by transaction id within a
// transaction. The primary key on transaction_id is the hard idempotency
// boundary of the ledger.
func (r *WalletRepo) RecordCredit(ctx context.Context, tx ports.LedgerTx, transactionID string, walletID string, amount int64) error {
	query := `INSERT INTO wallet_credits (transaction_id, wallet_id, amount, created_at)
		VALUES ($1, $2, $3, NOW())`

	_, err := tx.Exec(ctx, query, transactionID, walletID, amount)
	if err != nil {
		return fmt.Errorf("record wallet credit: %w", err)
	}
	return nil
}
