package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mobcash/mobcash/core"
)

type fakePropertyStore struct {
	values map[string]uint64
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{values: map[string]uint64{}}
}

func (s *fakePropertyStore) Get(ctx context.Context, key string, value any) error {
	p, ok := value.(*uint64)
	if !ok {
		return fmt.Errorf("unexpected value type %T", value)
	}

	*p = s.values[key]
	return nil
}

func (s *fakePropertyStore) Set(ctx context.Context, key string, value any) error {
	v, ok := value.(uint64)
	if !ok {
		return fmt.Errorf("unexpected value type %T", value)
	}

	s.values[key] = v
	return nil
}

type fakeTransactionStore struct {
	pending  []*core.Transaction
	diverged []*core.Transaction
}

func (s *fakeTransactionStore) Create(ctx context.Context, tx *core.Transaction) error { return nil }

func (s *fakeTransactionStore) UpdateStatus(ctx context.Context, tx *core.Transaction, to core.SyncStatus) error {
	return nil
}

func (s *fakeTransactionStore) MarkReconcileRequired(ctx context.Context, id uint64) error {
	return nil
}

func (s *fakeTransactionStore) ListRecent(ctx context.Context, walletID uint64, limit int) ([]*core.Transaction, error) {
	return nil, nil
}

func (s *fakeTransactionStore) ListAllRecent(ctx context.Context, limit int) ([]*core.Transaction, error) {
	return nil, nil
}

func (s *fakeTransactionStore) ListStatus(ctx context.Context, status core.SyncStatus, sinceID uint64, limit int) ([]*core.Transaction, error) {
	return after(s.pending, sinceID), nil
}

func (s *fakeTransactionStore) ListReconcileRequired(ctx context.Context, sinceID uint64, limit int) ([]*core.Transaction, error) {
	return after(s.diverged, sinceID), nil
}

func (s *fakeTransactionStore) CountStatus(ctx context.Context, status core.SyncStatus) (int64, error) {
	return 0, nil
}

func after(txs []*core.Transaction, sinceID uint64) []*core.Transaction {
	var out []*core.Transaction
	for _, tx := range txs {
		if tx.ID > sinceID {
			out = append(out, tx)
		}
	}

	return out
}

func newTestReconciler(transactions core.TransactionStore, properties core.PropertyStore) *Reconciler {
	return New(
		transactions,
		properties,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config{GraceWindow: time.Minute},
	)
}

func TestSweepPendingStopsInsideGraceWindow(t *testing.T) {
	now := time.Now()
	transactions := &fakeTransactionStore{
		pending: []*core.Transaction{
			{ID: 1, WalletID: 1, CreatedAt: now.Add(-5 * time.Minute)},
			{ID: 2, WalletID: 1, CreatedAt: now.Add(-3 * time.Minute)},
			{ID: 3, WalletID: 2, CreatedAt: now.Add(-5 * time.Second)},
		},
	}
	properties := newFakePropertyStore()

	w := newTestReconciler(transactions, properties)

	if err := w.sweepPending(context.Background()); err != nil {
		t.Fatalf("sweepPending: %v", err)
	}

	if !w.reported.Has(1) || !w.reported.Has(2) {
		t.Error("stale pending rows not reported")
	}

	if w.reported.Has(3) {
		t.Error("row inside grace window reported")
	}

	// the offset must not skip past the in-flight row
	if got := properties.values[propertyPendingOffset]; got != 2 {
		t.Errorf("pending offset = %d, want 2", got)
	}
}

func TestSweepPendingReportsOnce(t *testing.T) {
	transactions := &fakeTransactionStore{
		pending: []*core.Transaction{
			{ID: 7, WalletID: 1, CreatedAt: time.Now().Add(-10 * time.Minute)},
		},
	}
	properties := newFakePropertyStore()

	w := newTestReconciler(transactions, properties)

	if err := w.sweepPending(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	// second sweep starts past the stored offset and finds nothing
	if err := w.sweepPending(context.Background()); err == nil {
		t.Error("second sweep should report dry")
	}
}

func TestRunSweepsDivergedWhenPendingDry(t *testing.T) {
	transactions := &fakeTransactionStore{
		diverged: []*core.Transaction{
			{ID: 4, WalletID: 3, CreatedAt: time.Now()},
		},
	}
	properties := newFakePropertyStore()

	w := newTestReconciler(transactions, properties)

	if err := w.run(context.Background()); err != nil {
		t.Fatalf("run() = %v, want nil with diverged work found", err)
	}

	if !w.reported.Has(4) {
		t.Error("diverged row not reported when the pending sweep is dry")
	}

	if got := properties.values[propertyDivergedOffset]; got != 4 {
		t.Errorf("diverged offset = %d, want 4", got)
	}
}

func TestRunDryOnlyWhenBothSweepsDry(t *testing.T) {
	properties := newFakePropertyStore()

	w := newTestReconciler(&fakeTransactionStore{}, properties)
	if err := w.run(context.Background()); !errors.Is(err, errSweepDry) {
		t.Fatalf("run() with no work = %v, want dry", err)
	}

	transactions := &fakeTransactionStore{
		pending: []*core.Transaction{
			{ID: 2, WalletID: 1, CreatedAt: time.Now().Add(-10 * time.Minute)},
		},
	}

	w = newTestReconciler(transactions, newFakePropertyStore())
	if err := w.run(context.Background()); err != nil {
		t.Fatalf("run() with pending work = %v, want nil", err)
	}
}

func TestSweepDivergedAdvancesOffset(t *testing.T) {
	transactions := &fakeTransactionStore{
		diverged: []*core.Transaction{
			{ID: 4, WalletID: 3, CreatedAt: time.Now()},
			{ID: 9, WalletID: 5, CreatedAt: time.Now()},
		},
	}
	properties := newFakePropertyStore()

	w := newTestReconciler(transactions, properties)

	if err := w.sweepDiverged(context.Background()); err != nil {
		t.Fatalf("sweepDiverged: %v", err)
	}

	if !w.reported.Has(4) || !w.reported.Has(9) {
		t.Error("diverged rows not reported")
	}

	if got := properties.values[propertyDivergedOffset]; got != 9 {
		t.Errorf("diverged offset = %d, want 9", got)
	}
}
