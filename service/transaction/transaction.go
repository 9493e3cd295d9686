package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mobcash/mobcash/core"
	"github.com/shopspring/decimal"
)

func New(
	wallets core.WalletStore,
	transactions core.TransactionStore,
	externalz core.ExternalService,
	logger *slog.Logger,
) core.TransactionService {
	return &service{
		wallets:      wallets,
		transactions: transactions,
		externalz:    externalz,
		logger:       logger.With("service", "transaction"),
	}
}

type service struct {
	wallets      core.WalletStore
	transactions core.TransactionStore
	externalz    core.ExternalService
	logger       *slog.Logger
}

func validate(req *core.SubmitRequest) string {
	switch {
	case req.OwnerID == "":
		return "missing owner"
	case !req.Direction.Valid():
		return "unknown direction"
	case !req.Amount.IsPositive():
		return "amount must be positive"
	case !req.Amount.Equal(req.Amount.Truncate(2)):
		return "amount must have at most 2 decimal places"
	case req.ExternalUserID <= 0:
		return "missing external user"
	default:
		return ""
	}
}

// Submit runs the two-party sync in strict order: validate, funds pre-check,
// snapshot, external call, then — conditioned on that call's outcome — the
// terminal status and the local debit. The wallet is never mutated before
// the external call succeeded.
func (s *service) Submit(ctx context.Context, req *core.SubmitRequest) (*core.SubmitResult, error) {
	if reason := validate(req); reason != "" {
		return &core.SubmitResult{Status: core.SubmitStatusRejected, Reason: reason}, nil
	}

	logger := s.logger.With("owner", req.OwnerID, "direction", req.Direction, "amount", req.Amount)

	wallet, err := s.wallets.GetOrCreate(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("wallets.GetOrCreate: %w", err)
	}

	ext, err := s.findExternalUser(ctx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}

	if ext == nil {
		return &core.SubmitResult{
			Status:        core.SubmitStatusRejected,
			Reason:        core.ErrUnknownExternalUser.Error(),
			WalletBalance: wallet.Balance,
		}, nil
	}

	// Advisory pre-check for deposits: reject obviously short requests
	// before creating a row or calling out. Correctness does not rest on
	// this read; the conditional debit below is the real guard.
	if req.Direction == core.DirectionDeposit && wallet.Balance.LessThan(req.Amount) {
		return &core.SubmitResult{
			Status:        core.SubmitStatusRejected,
			Reason:        core.ErrInsufficientFunds.Error(),
			WalletBalance: wallet.Balance,
		}, nil
	}

	tx := &core.Transaction{
		WalletID:              wallet.ID,
		Direction:             req.Direction,
		Status:                core.SyncStatusPending,
		Amount:                req.Amount,
		Note:                  req.Note,
		ExternalUserID:        ext.ID,
		ExternalUserName:      ext.Name,
		ExternalUserEmail:     ext.Email,
		ExternalReferralToken: ext.ReferralToken,
	}

	// The pending row goes down before the external call so that a crash
	// mid-flight leaves forensic evidence for the reconciler.
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("transactions.Create: %w", err)
	}

	logger = logger.With("transaction", tx.ID)

	previous := decimal.Zero
	if ext.Balance != nil {
		previous = *ext.Balance
	}

	// deposit raises the external balance, withdraw lowers it
	next := previous.Add(req.Amount)
	if req.Direction == core.DirectionWithdraw {
		next = previous.Sub(req.Amount)
	}

	if err := s.externalz.UpdateBalance(ctx, ext.ReferralToken, next); err != nil {
		logger.Warn("external update failed", "err", err)

		tx.SyncError = err.Error()
		if uerr := s.transactions.UpdateStatus(ctx, tx, core.SyncStatusFailed); uerr != nil {
			return nil, fmt.Errorf("transactions.UpdateStatus: %w", uerr)
		}

		return &core.SubmitResult{
			Status:        core.SubmitStatusFailed,
			Reason:        err.Error(),
			Transaction:   tx,
			WalletBalance: wallet.Balance,
		}, nil
	}

	tx.ExternalBalanceBefore = decimal.NewNullDecimal(previous)
	tx.ExternalBalanceAfter = decimal.NewNullDecimal(next)

	// The external side is now truthful: the row is synced no matter what
	// happens to the local debit below.
	if err := s.transactions.UpdateStatus(ctx, tx, core.SyncStatusSynced); err != nil {
		return nil, fmt.Errorf("transactions.UpdateStatus: %w", err)
	}

	if req.Direction != core.DirectionDeposit {
		// withdraws pull funds in from the external party and never touch
		// the local reserve
		return &core.SubmitResult{
			Status:        core.SubmitStatusSynced,
			Transaction:   tx,
			WalletBalance: wallet.Balance,
		}, nil
	}

	applied, err := s.wallets.DebitIfSufficient(ctx, wallet.ID, req.Amount)
	if err != nil || !applied {
		// Divergence window: the external system already reflects the
		// change but the reserve was not debited. Surface it, flag it,
		// leave it for manual reconciliation.
		if err != nil {
			logger.Error("local debit errored after external success", "err", err)
		} else {
			logger.Warn("local debit lost to concurrent spending", "err", core.ErrPartialReconciliation)
		}

		if merr := s.transactions.MarkReconcileRequired(ctx, tx.ID); merr != nil {
			logger.Error("transactions.MarkReconcileRequired", "err", merr)
		}

		tx.ReconcileRequired = true
		return &core.SubmitResult{
			Status:        core.SubmitStatusReconcile,
			Reason:        core.ErrPartialReconciliation.Error(),
			Transaction:   tx,
			WalletBalance: wallet.Balance,
		}, nil
	}

	balance := wallet.Balance.Sub(req.Amount)
	if fresh, err := s.wallets.Find(ctx, wallet.ID); err == nil {
		balance = fresh.Balance
	}

	return &core.SubmitResult{
		Status:        core.SubmitStatusSynced,
		Transaction:   tx,
		WalletBalance: balance,
	}, nil
}

func (s *service) findExternalUser(ctx context.Context, id int64) (*core.ExternalUser, error) {
	users, err := s.externalz.LookupUsers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("external directory lookup: %w", err)
	}

	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, nil
}
