package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"payment-reconciliation-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	idMaxCollisionRetries = 5
	idMutexTTL            = 3 * time.Second
	idMutexMaxWait        = 500 * time.Millisecond
)

// IDGeneratorImpl implements ports.IDGenerator. A candidate id composes a
// wall-clock timestamp, a sub-millisecond component and a random suffix; a
// short-lived named mutex serializes the store existence check against
// concurrent generators. When the mutex cannot be acquired within the bounded
// wait, or collisions exhaust the retry budget, generation falls back to a
// UUID-based id that skips the existence check — availability over perfect
// elegance, since the fallback is still statistically unique.
type IDGeneratorImpl struct {
	store ports.TransactionStore
	mutex ports.MutexStore
	log   zerolog.Logger
}

// NewIDGenerator creates a new IDGeneratorImpl.
func NewIDGenerator(store ports.TransactionStore, mutex ports.MutexStore, log zerolog.Logger) *IDGeneratorImpl {
	return &IDGeneratorImpl{store: store, mutex: mutex, log: log}
}

// Generate returns a globally unique transaction id. It never fails: every
// exit path hands back a usable id. A residual collision on the fallback path
// is caught by the store's uniqueness constraint at creation time.
func (g *IDGeneratorImpl) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < idMaxCollisionRetries; attempt++ {
		candidate := newCandidateID()

		release, acquired, err := g.mutex.Acquire(ctx, "txid:"+candidate, idMutexTTL, idMutexMaxWait)
		if err != nil || !acquired {
			if err != nil {
				g.log.Warn().Err(err).Msg("id mutex unavailable, using uuid fallback")
			} else {
				g.log.Warn().Str("candidate", candidate).Msg("id mutex wait exceeded, using uuid fallback")
			}
			return fallbackID(), nil
		}

		existing, err := g.store.GetByID(ctx, candidate)
		release(ctx)
		if err != nil {
			g.log.Warn().Err(err).Msg("id existence check failed, using uuid fallback")
			return fallbackID(), nil
		}
		if existing == nil {
			return candidate, nil
		}

		g.log.Info().
			Str("candidate", candidate).
			Int("attempt", attempt+1).
			Msg("transaction id collision, regenerating")
	}

	g.log.Warn().Msg("id collision retries exhausted, using uuid fallback")
	return fallbackID(), nil
}

// newCandidateID builds a timestamp-based candidate:
// TXN<yyyymmddHHMMSS><microseconds><4 random digits>.
func newCandidateID() string {
	now := time.Now().UTC()
	return fmt.Sprintf("TXN%s%06d%04d",
		now.Format("20060102150405"),
		now.Nanosecond()/1000,
		rand.IntN(10000),
	)
}

// fallbackID skips the existence check entirely.
func fallbackID() string {
	return "TXN-" + uuid.NewString()
}
