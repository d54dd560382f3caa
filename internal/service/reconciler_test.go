package service

import (
	"context"
	"errors"
	"testing"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconcilerTestDeps struct {
	svc        *ReconcilerImpl
	store      *mocks.MockTransactionStore
	dispatcher *mocks.MockSideEffectDispatcher
	ctrl       *gomock.Controller
}

func setupReconciler(t *testing.T) *reconcilerTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconcilerTestDeps{
		store:      mocks.NewMockTransactionStore(ctrl),
		dispatcher: mocks.NewMockSideEffectDispatcher(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewReconciler(d.store, d.dispatcher, zerolog.Nop())
	return d
}

func pendingTx(id string) *domain.Transaction {
	return &domain.Transaction{
		ID:       id,
		Target:   domain.Target{Type: domain.TargetOrder, ID: "ORD-1"},
		Amount:   5000,
		Currency: "TZS",
		State:    domain.StatePending,
	}
}

func withState(tx *domain.Transaction, s domain.State) *domain.Transaction {
	cp := *tx
	cp.State = s
	return &cp
}

func TestReconciler_WebhookCompleted_Applied(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := pendingTx("TX1")
	paid := withState(tx, domain.StatePaid)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(tx, nil)
	d.store.EXPECT().
		CompareAndTransition(ctx, "TX1", nonTerminalStates, domain.StatePaid).
		Return(true, paid, nil)

	var appended domain.ReconcileEvent
	d.store.EXPECT().
		AppendEvent(ctx, "TX1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ev domain.ReconcileEvent) error {
			appended = ev
			return nil
		})
	d.dispatcher.EXPECT().Apply(ctx, paid).Return([]ports.SideEffectResult{
		{Kind: domain.SideEffectOrderUpdated, Applied: true},
		{Kind: domain.SideEffectNotified, Applied: true},
	})

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	assert.Equal(t, domain.SourceWebhook, appended.Source)
	assert.Equal(t, "COMPLETED", appended.RawStatus)
	assert.Equal(t, domain.StatePaid, appended.Normalized)
	assert.True(t, appended.Accepted)
}

func TestReconciler_DuplicateWebhook_Redundant(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paid := withState(pendingTx("TX1"), domain.StatePaid)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(paid, nil)

	var appended domain.ReconcileEvent
	d.store.EXPECT().
		AppendEvent(ctx, "TX1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ev domain.ReconcileEvent) error {
			appended = ev
			return nil
		})

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRedundant, outcome)
	assert.True(t, appended.Accepted, "a repeated identical report is accepted as a no-op")
}

func TestReconciler_StalePollAfterPaid_Rejected(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paid := withState(pendingTx("TX1"), domain.StatePaid)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(paid, nil)

	var appended domain.ReconcileEvent
	d.store.EXPECT().
		AppendEvent(ctx, "TX1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ev domain.ReconcileEvent) error {
			appended = ev
			return nil
		})

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourcePoll, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRejected, outcome)
	assert.False(t, appended.Accepted, "a conflicting terminal report is logged as not accepted")
	assert.Equal(t, domain.StateCanceled, appended.Normalized)
}

func TestReconciler_ProcessingAfterTerminal_Rejected(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	canceled := withState(pendingTx("TX1"), domain.StateCanceled)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(canceled, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(nil)

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRejected, outcome, "non-terminal reports never regress a terminal state")
}

func TestReconciler_UnknownTransaction_NotFound(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.store.EXPECT().GetByID(ctx, "TX-missing").Return(nil, nil)

	outcome, err := d.svc.Reconcile(ctx, "TX-missing", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeNotFound, outcome)
}

func TestReconciler_ProcessingReport_NoSideEffects(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := pendingTx("TX1")
	processing := withState(tx, domain.StateProcessing)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(tx, nil)
	d.store.EXPECT().
		CompareAndTransition(ctx, "TX1", nonTerminalStates, domain.StateProcessing).
		Return(true, processing, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(nil)
	// No dispatcher call: the transition is not terminal.

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)
}

func TestReconciler_LostRace_ReevaluatesFreshState(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := pendingTx("TX1")
	paid := withState(tx, domain.StatePaid)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(tx, nil)
	// A concurrent caller applied PAID first; the precondition fails and the
	// fresh row already carries the reported state.
	d.store.EXPECT().
		CompareAndTransition(ctx, "TX1", nonTerminalStates, domain.StatePaid).
		Return(false, paid, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(nil)

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRedundant, outcome)
}

func TestReconciler_LostRaceToConflict_Rejected(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := pendingTx("TX1")
	canceled := withState(tx, domain.StateCanceled)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(tx, nil)
	d.store.EXPECT().
		CompareAndTransition(ctx, "TX1", nonTerminalStates, domain.StatePaid).
		Return(false, canceled, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(nil)

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRejected, outcome, "whichever terminal report lands first wins")
}

func TestReconciler_SideEffectFailure_TransitionStands(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := pendingTx("TX1")
	failed := withState(tx, domain.StateFailed)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(tx, nil)
	d.store.EXPECT().
		CompareAndTransition(ctx, "TX1", nonTerminalStates, domain.StateFailed).
		Return(true, failed, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(nil)
	d.dispatcher.EXPECT().Apply(ctx, failed).Return([]ports.SideEffectResult{
		{Kind: domain.SideEffectOrderUpdated, Applied: true},
		{Kind: domain.SideEffectNotified, Err: errors.New("notification service down")},
	})

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "FAILED")
	require.NoError(t, err, "a side-effect failure never discards the transition")
	assert.Equal(t, ports.OutcomeApplied, outcome)
}

func TestReconciler_AuditAppendFailure_Tolerated(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paid := withState(pendingTx("TX1"), domain.StatePaid)

	d.store.EXPECT().GetByID(ctx, "TX1").Return(paid, nil)
	d.store.EXPECT().AppendEvent(ctx, "TX1", gomock.Any()).Return(errors.New("disk full"))

	outcome, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeRedundant, outcome)
}

func TestReconciler_StoreError_Propagates(t *testing.T) {
	d := setupReconciler(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.store.EXPECT().GetByID(ctx, "TX1").Return(nil, errors.New("connection refused"))

	_, err := d.svc.Reconcile(ctx, "TX1", domain.SourceWebhook, "COMPLETED")
	require.Error(t, err)
}
