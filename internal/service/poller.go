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

// StatusPoller actively queries the gateway for transactions whose push
// never arrived within the expected window and feeds the answers into the
// reconciler. It also serves on-demand polls from the ingress adapters.
type StatusPoller struct {
	store      ports.TransactionStore
	gateway    ports.GatewayClient
	reconciler ports.Reconciler
	pushWindow time.Duration
	interval   time.Duration
	batchSize  int
	log        zerolog.Logger
}

// NewStatusPoller creates a new StatusPoller.
func NewStatusPoller(
	store ports.TransactionStore,
	gateway ports.GatewayClient,
	reconciler ports.Reconciler,
	pushWindow, interval time.Duration,
	batchSize int,
	log zerolog.Logger,
) *StatusPoller {
	return &StatusPoller{
		store:      store,
		gateway:    gateway,
		reconciler: reconciler,
		pushWindow: pushWindow,
		interval:   interval,
		batchSize:  batchSize,
		log:        log,
	}
}

// Run polls on the configured interval until the context is canceled.
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().
		Dur("interval", p.interval).
		Dur("push_window", p.pushWindow).
		Msg("status poller started")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("status poller stopped")
			return
		case <-ticker.C:
			if n, err := p.PollStale(ctx); err != nil {
				p.log.Error().Err(err).Msg("poll pass failed")
			} else if n > 0 {
				p.log.Info().Int("polled", n).Msg("poll pass complete")
			}
		}
	}
}

// PollStale queries the gateway for every non-terminal transaction older
// than the push window and reconciles the answers. Per-transaction failures
// are logged and skipped; the next pass retries them.
func (p *StatusPoller) PollStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-p.pushWindow)
	stale, err := p.store.ListStalePending(ctx, cutoff, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale transactions: %w", err)
	}

	polled := 0
	for i := range stale {
		if _, _, err := p.PollNow(ctx, stale[i].ID); err != nil {
			p.log.Warn().Err(err).Str("tx_id", stale[i].ID).Msg("stale poll failed")
			continue
		}
		polled++
	}
	return polled, nil
}

// PollNow fetches the gateway's current status for one transaction and
// reconciles it, returning the outcome and the fresh transaction.
func (p *StatusPoller) PollNow(ctx context.Context, id string) (ports.Outcome, *domain.Transaction, error) {
	raw, err := p.gateway.GetOrderStatus(ctx, id)
	if err != nil {
		return "", nil, apperror.ErrGatewayFailure(err)
	}

	outcome, err := p.reconciler.Reconcile(ctx, id, domain.SourcePoll, raw)
	if err != nil {
		return "", nil, err
	}

	tx, err := p.store.GetByID(ctx, id)
	if err != nil {
		return outcome, nil, apperror.InternalError(fmt.Errorf("reload transaction: %w", err))
	}
	return outcome, tx, nil
}
