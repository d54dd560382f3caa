package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Transaction Store ---

// inMemoryTransactionStore implements ports.TransactionStore with a map and
// a mutex. CompareAndTransition carries the same atomicity contract as the
// PostgreSQL store: precondition check and write happen under one lock.
type inMemoryTransactionStore struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction
}

func newInMemoryTransactionStore() *inMemoryTransactionStore {
	return &inMemoryTransactionStore{transactions: make(map[string]*domain.Transaction)}
}

func (s *inMemoryTransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[tx.ID]; exists {
		return apperror.ErrDuplicateTransactionID(tx.ID)
	}
	s.transactions[tx.ID] = cloneTx(tx)
	return nil
}

func (s *inMemoryTransactionStore) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	return cloneTx(tx), nil
}

func (s *inMemoryTransactionStore) GetByTarget(ctx context.Context, target domain.Target) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Transaction
	for _, tx := range s.transactions {
		if tx.Target == target {
			result = append(result, *cloneTx(tx))
		}
	}
	return result, nil
}

func (s *inMemoryTransactionStore) SetGatewayOrderID(ctx context.Context, id string, gatewayOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	tx.GatewayOrderID = &gatewayOrderID
	return nil
}

func (s *inMemoryTransactionStore) CompareAndTransition(ctx context.Context, id string, from []domain.State, to domain.State) (bool, *domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return false, nil, nil
	}
	for _, f := range from {
		if tx.State == f {
			tx.State = to
			tx.UpdatedAt = time.Now().UTC()
			if to.IsTerminal() {
				now := time.Now().UTC()
				tx.FinalizedAt = &now
			}
			return true, cloneTx(tx), nil
		}
	}
	return false, cloneTx(tx), nil
}

func (s *inMemoryTransactionStore) MarkSideEffectApplied(ctx context.Context, id string, kind domain.SideEffectKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return false, fmt.Errorf("transaction %s not found", id)
	}
	for _, k := range tx.AppliedSideEffects {
		if k == kind {
			return true, nil
		}
	}
	tx.AppliedSideEffects = append(tx.AppliedSideEffects, kind)
	return false, nil
}

func (s *inMemoryTransactionStore) AppendEvent(ctx context.Context, id string, event domain.ReconcileEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	tx.Events = append(tx.Events, event)
	return nil
}

func (s *inMemoryTransactionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil
	}
	if tx.State != domain.StatePending {
		return fmt.Errorf("transaction %s is not PENDING", id)
	}
	delete(s.transactions, id)
	return nil
}

func (s *inMemoryTransactionStore) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Transaction
	for _, tx := range s.transactions {
		if tx.State.IsTerminal() || !tx.UpdatedAt.Before(olderThan) {
			continue
		}
		result = append(result, *cloneTx(tx))
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *inMemoryTransactionStore) ListUnfinishedSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Transaction
	for _, tx := range s.transactions {
		if !tx.State.IsTerminal() || tx.FinalizedAt == nil || !tx.FinalizedAt.Before(olderThan) {
			continue
		}
		if len(tx.MissingSideEffects()) == 0 {
			continue
		}
		result = append(result, *cloneTx(tx))
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func cloneTx(tx *domain.Transaction) *domain.Transaction {
	c := *tx
	c.AppliedSideEffects = append([]domain.SideEffectKind(nil), tx.AppliedSideEffects...)
	c.Events = append([]domain.ReconcileEvent(nil), tx.Events...)
	return &c
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*domain.Wallet // keyed by wallet id
	credits map[string]int64          // keyed by transaction id
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{
		wallets: make(map[string]*domain.Wallet),
		credits: make(map[string]int64),
	}
}

func (r *inMemoryWalletRepo) seed(w *domain.Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.ID] = w
}

func (r *inMemoryWalletRepo) balance(walletID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wallets[walletID]; ok {
		return w.Balance
	}
	return 0
}

func (r *inMemoryWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx ports.LedgerTx, ownerID string, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.OwnerID == ownerID && w.Currency == currency {
			c := *w
			return &c, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx ports.LedgerTx, walletID string, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	w.Balance = balance
	return nil
}

func (r *inMemoryWalletRepo) CreditExists(ctx context.Context, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.credits[transactionID]
	return ok, nil
}

func (r *inMemoryWalletRepo) RecordCredit(ctx context.Context, tx ports.LedgerTx, transactionID string, walletID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.credits[transactionID]; ok {
		return fmt.Errorf("credit for %s already recorded", transactionID)
	}
	r.credits[transactionID] = amount
	return nil
}

// --- Recording Target Updater ---

// recordingTargetUpdater counts MarkPaid/MarkFailed calls per transaction.
// The counts back the exactly-once assertions in the concurrency tests.
type recordingTargetUpdater struct {
	mu     sync.Mutex
	paid   map[string]int
	failed map[string]int
}

func newRecordingTargetUpdater() *recordingTargetUpdater {
	return &recordingTargetUpdater{paid: make(map[string]int), failed: make(map[string]int)}
}

func (r *recordingTargetUpdater) MarkPaid(ctx context.Context, target domain.Target, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paid[transactionID]++
	return nil
}

func (r *recordingTargetUpdater) MarkFailed(ctx context.Context, target domain.Target, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[transactionID]++
	return nil
}

func (r *recordingTargetUpdater) paidCount(transactionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paid[transactionID]
}

func (r *recordingTargetUpdater) failedCount(transactionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed[transactionID]
}

// --- Recording Notifier / Receipt Issuer ---

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(map[string]int)}
}

func (n *recordingNotifier) NotifyOutcome(ctx context.Context, tx *domain.Transaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[tx.ID]++
	return nil
}

func (n *recordingNotifier) count(transactionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[transactionID]
}

type recordingReceiptIssuer struct {
	mu    sync.Mutex
	calls map[string]int
}

func newRecordingReceiptIssuer() *recordingReceiptIssuer {
	return &recordingReceiptIssuer{calls: make(map[string]int)}
}

func (r *recordingReceiptIssuer) IssueReceipt(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[tx.ID]++
	return nil
}

func (r *recordingReceiptIssuer) count(transactionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[transactionID]
}

// --- Stub Gateway ---

// stubGateway implements ports.GatewayClient with scriptable order statuses.
// Unscripted transactions report PENDING.
type stubGateway struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newStubGateway() *stubGateway {
	return &stubGateway{statuses: make(map[string]string)}
}

func (g *stubGateway) setStatus(transactionID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[transactionID] = status
}

func (g *stubGateway) CreateCheckout(ctx context.Context, req ports.CheckoutOrder) (*ports.CheckoutSession, error) {
	return &ports.CheckoutSession{
		GatewayOrderID: "GW-" + req.TransactionID,
		PaymentURL:     "https://gateway.test/pay/" + req.TransactionID,
	}, nil
}

func (g *stubGateway) GetOrderStatus(ctx context.Context, transactionID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.statuses[transactionID]; ok {
		return s, nil
	}
	return "PENDING", nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
