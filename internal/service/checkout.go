package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// createRetries bounds how often a residual id collision (possible only on
// the generator's fallback path) is retried with a fresh id.
const createRetries = 3

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	idgen   ports.IDGenerator
	store   ports.TransactionStore
	gateway ports.GatewayClient
	log     zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	idgen ports.IDGenerator,
	store ports.TransactionStore,
	gateway ports.GatewayClient,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{idgen: idgen, store: store, gateway: gateway, log: log}
}

// InitiateCheckout creates the PENDING transaction and obtains the gateway
// checkout URL. A gateway failure rolls the fresh row back so no half-created
// transaction survives; the caller gets a GatewayError and retries or
// surfaces the failure to the user.
func (s *CheckoutServiceImpl) InitiateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Target.Type.Valid() {
		return nil, apperror.ErrUnknownTarget(string(req.Target.Type))
	}

	tx, err := s.createTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckout(ctx, ports.CheckoutOrder{
		TransactionID: tx.ID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, tx.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("tx_id", tx.ID).Msg("failed to roll back transaction after gateway error")
		}
		return nil, apperror.ErrGatewayFailure(err)
	}

	if err := s.store.SetGatewayOrderID(ctx, tx.ID, session.GatewayOrderID); err != nil {
		// The gateway order exists and is keyed by our transaction id, so
		// polling still works without the stored reference.
		s.log.Warn().Err(err).Str("tx_id", tx.ID).Msg("failed to persist gateway order id")
	}

	s.log.Info().
		Str("tx_id", tx.ID).
		Str("target", req.Target.Key()).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Msg("checkout initiated")

	return &ports.CheckoutResult{
		TransactionID: tx.ID,
		PaymentURL:    session.PaymentURL,
	}, nil
}

func (s *CheckoutServiceImpl) createTransaction(ctx context.Context, req ports.CheckoutRequest) (*domain.Transaction, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := s.idgen.Generate(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate id: %w", err))
		}

		now := time.Now().UTC()
		tx := &domain.Transaction{
			ID:        id,
			Target:    req.Target,
			Amount:    req.Amount,
			Currency:  req.Currency,
			State:     domain.StatePending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.store.Create(ctx, tx)
		if err == nil {
			return tx, nil
		}
		if !isDuplicateID(err) {
			return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
		}

		s.log.Warn().
			Str("tx_id", id).
			Int("attempt", attempt+1).
			Msg("duplicate transaction id at creation, regenerating")
	}
	return nil, apperror.InternalError(fmt.Errorf("exhausted %d attempts to create a unique transaction", createRetries))
}

func isDuplicateID(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == "TXN_002"
}
