package service

import (
	"context"
	"fmt"
	"time"

	"payment-reconciliation-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// sweepGrace keeps the sweep off transactions the synchronous dispatch may
// still be working on.
const sweepGrace = 30 * time.Second

// SideEffectSweeper re-runs the dispatcher for terminal transactions that
// still miss side effects, out-of-band of the reconciliation path. Already
// applied kinds are skipped by the dispatcher, so the sweep never re-runs a
// successful action.
type SideEffectSweeper struct {
	store      ports.TransactionStore
	dispatcher ports.SideEffectDispatcher
	interval   time.Duration
	batchSize  int
	log        zerolog.Logger
}

// NewSideEffectSweeper creates a new SideEffectSweeper.
func NewSideEffectSweeper(
	store ports.TransactionStore,
	dispatcher ports.SideEffectDispatcher,
	interval time.Duration,
	batchSize int,
	log zerolog.Logger,
) *SideEffectSweeper {
	return &SideEffectSweeper{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		batchSize:  batchSize,
		log:        log,
	}
}

// Run sweeps on the configured interval until the context is canceled.
func (s *SideEffectSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("side effect sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("side effect sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep pass failed")
			} else if n > 0 {
				s.log.Info().Int("swept", n).Msg("sweep pass complete")
			}
		}
	}
}

// SweepOnce dispatches one batch of unfinished terminal transactions and
// returns how many it touched.
func (s *SideEffectSweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-sweepGrace)
	unfinished, err := s.store.ListUnfinishedSideEffects(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unfinished side effects: %w", err)
	}

	for i := range unfinished {
		tx := &unfinished[i]
		for _, res := range s.dispatcher.Apply(ctx, tx) {
			if res.Err != nil {
				s.log.Warn().
					Err(res.Err).
					Str("tx_id", tx.ID).
					Str("kind", string(res.Kind)).
					Msg("side effect retry failed")
			}
		}
	}
	return len(unfinished), nil
}
