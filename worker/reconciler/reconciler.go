package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/mobcash/mobcash/core"
	"github.com/zyedidia/generic/mapset"
)

const (
	propertyPendingOffset  = "reconcile_pending_offset"
	propertyDivergedOffset = "reconcile_diverged_offset"
)

// errSweepDry means a sweep found nothing past its offset. It slows the
// loop down; it must never stop the other sweep from running.
var errSweepDry = errors.New("sweep dry")

type Config struct {
	// GraceWindow is how long a pending row may exist before it counts as
	// crash evidence. It must comfortably exceed the external call budget
	// (attempts x timeout).
	GraceWindow time.Duration `valid:"required"`
}

// Reconciler surfaces the two divergence classes the orchestrator cannot
// close on its own: rows stuck pending (process died mid-flight) and synced
// rows whose local debit never applied. It only reports; balances are fixed
// by hand.
type Reconciler struct {
	transactions core.TransactionStore
	properties   core.PropertyStore
	logger       *slog.Logger
	cfg          Config

	reported mapset.Set[uint64]
}

func New(
	transactions core.TransactionStore,
	properties core.PropertyStore,
	logger *slog.Logger,
	cfg Config,
) *Reconciler {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Reconciler{
		transactions: transactions,
		properties:   properties,
		logger:       logger.With("worker", "reconciler"),
		cfg:          cfg,
		reported:     mapset.New[uint64](),
	}
}

func (w *Reconciler) Run(ctx context.Context) error {
	w.logger.Info("reconciler start")

	for {
		dur := 30 * time.Second
		if w.run(ctx) == nil {
			dur = 10 * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

// run executes both sweeps every cycle; one sweep coming up dry says
// nothing about the other's backlog.
func (w *Reconciler) run(ctx context.Context) error {
	pendingErr := w.sweepPending(ctx)
	if pendingErr != nil && !errors.Is(pendingErr, errSweepDry) {
		return pendingErr
	}

	divergedErr := w.sweepDiverged(ctx)
	if divergedErr != nil && !errors.Is(divergedErr, errSweepDry) {
		return divergedErr
	}

	if pendingErr != nil && divergedErr != nil {
		return errSweepDry
	}

	return nil
}

func (w *Reconciler) sweepPending(ctx context.Context) error {
	var offset uint64
	if err := w.properties.Get(ctx, propertyPendingOffset, &offset); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return err
	}

	const limit = 100
	txs, err := w.transactions.ListStatus(ctx, core.SyncStatusPending, offset, limit)
	if err != nil {
		w.logger.Error("transactions.ListStatus", "err", err)
		return err
	}

	cutoff := time.Now().Add(-w.cfg.GraceWindow)
	advanced := offset

	for _, tx := range txs {
		if tx.CreatedAt.After(cutoff) {
			// still inside the window; a request may legitimately be in
			// flight, stop here and revisit
			break
		}

		w.report(tx, "transaction stuck pending, process likely died mid-flight")
		advanced = tx.ID
	}

	if advanced > offset {
		if err := w.properties.Set(ctx, propertyPendingOffset, advanced); err != nil {
			w.logger.Error("properties.Set", "err", err)
			return err
		}
	}

	if len(txs) == 0 {
		return errSweepDry
	}

	return nil
}

func (w *Reconciler) sweepDiverged(ctx context.Context) error {
	var offset uint64
	if err := w.properties.Get(ctx, propertyDivergedOffset, &offset); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return err
	}

	const limit = 100
	txs, err := w.transactions.ListReconcileRequired(ctx, offset, limit)
	if err != nil {
		w.logger.Error("transactions.ListReconcileRequired", "err", err)
		return err
	}

	for _, tx := range txs {
		w.report(tx, "external balance updated but local debit missing")
		offset = tx.ID
	}

	if len(txs) > 0 {
		if err := w.properties.Set(ctx, propertyDivergedOffset, offset); err != nil {
			w.logger.Error("properties.Set", "err", err)
			return err
		}

		return nil
	}

	return errSweepDry
}

func (w *Reconciler) report(tx *core.Transaction, msg string) {
	if w.reported.Has(tx.ID) {
		return
	}

	w.reported.Put(tx.ID)
	w.logger.Warn(msg,
		"transaction", tx.ID,
		"wallet", tx.WalletID,
		"direction", tx.Direction,
		"amount", tx.Amount,
		"external_user", tx.ExternalUserID,
		"referral_token", tx.ExternalReferralToken,
		"created_at", tx.CreatedAt,
	)
}
