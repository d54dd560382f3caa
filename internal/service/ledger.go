package service

import (
	"context"
	"fmt"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// WalletLedger implements ports.LedgerService with pessimistic row locking.
// The credit record keyed by transaction id makes Credit idempotent at the
// ledger boundary, independent of the dispatcher's bookkeeping.
type WalletLedger struct {
	wallets    ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletLedger creates a new WalletLedger.
func NewWalletLedger(wallets ports.WalletRepository, transactor ports.DBTransactor, log zerolog.Logger) *WalletLedger {
	return &WalletLedger{wallets: wallets, transactor: transactor, log: log}
}

// Credit adds the transaction amount to the wallet of the subscription the
// top-up targets. A credit already recorded for this transaction id is a
// clean no-op.
func (l *WalletLedger) Credit(ctx context.Context, tx *domain.Transaction) error {
	exists, err := l.wallets.CreditExists(ctx, tx.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check credit exists: %w", err))
	}
	if exists {
		l.log.Debug().Str("tx_id", tx.ID).Msg("wallet credit already recorded, skipping")
		return nil
	}

	dbTx, err := l.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := l.wallets.GetByOwnerForUpdate(ctx, dbTx, tx.Target.ID, tx.Currency)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return apperror.InternalError(fmt.Errorf("no %s wallet for subscription %s", tx.Currency, tx.Target.ID))
	}

	if err := l.wallets.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance+tx.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := l.wallets.RecordCredit(ctx, dbTx, tx.ID, wallet.ID, tx.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("record credit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	l.log.Info().
		Str("tx_id", tx.ID).
		Str("wallet_id", wallet.ID).
		Int64("amount", tx.Amount).
		Msg("wallet credited")
	return nil
}
