package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type pollerTestDeps struct {
	svc        *StatusPoller
	store      *mocks.MockTransactionStore
	gateway    *mocks.MockGatewayClient
	reconciler *mocks.MockReconciler
	ctrl       *gomock.Controller
}

func setupPoller(t *testing.T) *pollerTestDeps {
	ctrl := gomock.NewController(t)
	d := &pollerTestDeps{
		store:      mocks.NewMockTransactionStore(ctrl),
		gateway:    mocks.NewMockGatewayClient(ctrl),
		reconciler: mocks.NewMockReconciler(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewStatusPoller(d.store, d.gateway, d.reconciler, 3*time.Minute, time.Minute, 50, zerolog.Nop())
	return d
}

func TestPoller_PollNow_ReconcilesGatewayAnswer(t *testing.T) {
	d := setupPoller(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paid := withState(pendingTx("TX1"), domain.StatePaid)

	d.gateway.EXPECT().GetOrderStatus(ctx, "TX1").Return("COMPLETED", nil)
	d.reconciler.EXPECT().Reconcile(ctx, "TX1", domain.SourcePoll, "COMPLETED").Return(ports.OutcomeApplied, nil)
	d.store.EXPECT().GetByID(ctx, "TX1").Return(paid, nil)

	outcome, tx, err := d.svc.PollNow(ctx, "TX1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)
	assert.Equal(t, domain.StatePaid, tx.State)
}

func TestPoller_PollNow_GatewayError(t *testing.T) {
	d := setupPoller(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.gateway.EXPECT().GetOrderStatus(ctx, "TX1").Return("", errors.New("timeout"))

	_, _, err := d.svc.PollNow(ctx, "TX1")
	require.Error(t, err)
}

func TestPoller_PollStale_ReconcilesEachStaleTransaction(t *testing.T) {
	d := setupPoller(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	stale := []domain.Transaction{*pendingTx("TX1"), *pendingTx("TX2")}

	d.store.EXPECT().
		ListStalePending(ctx, gomock.Any(), 50).
		DoAndReturn(func(_ context.Context, cutoff time.Time, _ int) ([]domain.Transaction, error) {
			assert.WithinDuration(t, time.Now().UTC().Add(-3*time.Minute), cutoff, 2*time.Second)
			return stale, nil
		})

	for _, id := range []string{"TX1", "TX2"} {
		d.gateway.EXPECT().GetOrderStatus(ctx, id).Return("PENDING", nil)
		d.reconciler.EXPECT().Reconcile(ctx, id, domain.SourcePoll, "PENDING").Return(ports.OutcomeRedundant, nil)
		d.store.EXPECT().GetByID(ctx, id).Return(pendingTx(id), nil)
	}

	n, err := d.svc.PollStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPoller_PollStale_SkipsFailedTransaction(t *testing.T) {
	d := setupPoller(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	stale := []domain.Transaction{*pendingTx("TX1"), *pendingTx("TX2")}

	d.store.EXPECT().ListStalePending(ctx, gomock.Any(), 50).Return(stale, nil)

	d.gateway.EXPECT().GetOrderStatus(ctx, "TX1").Return("", errors.New("gateway 500"))
	d.gateway.EXPECT().GetOrderStatus(ctx, "TX2").Return("COMPLETED", nil)
	d.reconciler.EXPECT().Reconcile(ctx, "TX2", domain.SourcePoll, "COMPLETED").Return(ports.OutcomeApplied, nil)
	d.store.EXPECT().GetByID(ctx, "TX2").Return(withState(pendingTx("TX2"), domain.StatePaid), nil)

	n, err := d.svc.PollStale(ctx)
	require.NoError(t, err, "one failed poll does not abort the pass")
	assert.Equal(t, 1, n)
}

func TestSweeper_SweepOnce_DispatchesUnfinished(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	dispatcher := mocks.NewMockSideEffectDispatcher(ctrl)
	sweeper := NewSideEffectSweeper(store, dispatcher, time.Minute, 50, zerolog.Nop())

	ctx := context.Background()
	unfinished := []domain.Transaction{
		*withState(pendingTx("TX1"), domain.StatePaid),
		*withState(pendingTx("TX2"), domain.StateFailed),
	}

	store.EXPECT().ListUnfinishedSideEffects(ctx, gomock.Any(), 50).Return(unfinished, nil)
	dispatcher.EXPECT().Apply(ctx, gomock.Any()).Return(nil).Times(2)

	n, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSweeper_SweepOnce_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	dispatcher := mocks.NewMockSideEffectDispatcher(ctrl)
	sweeper := NewSideEffectSweeper(store, dispatcher, time.Minute, 50, zerolog.Nop())

	store.EXPECT().ListUnfinishedSideEffects(gomock.Any(), gomock.Any(), 50).Return(nil, errors.New("db down"))

	_, err := sweeper.SweepOnce(context.Background())
	require.Error(t, err)
}
