package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type SubmitStatus string

const (
	SubmitStatusSynced   SubmitStatus = "synced"
	SubmitStatusFailed   SubmitStatus = "failed"
	SubmitStatusRejected SubmitStatus = "rejected"
	// SubmitStatusReconcile means the external update succeeded but the
	// matching local debit did not apply: the two systems have diverged
	// and the row is flagged for manual reconciliation.
	SubmitStatusReconcile SubmitStatus = "reconcile_required"
)

type SubmitRequest struct {
	OwnerID        string
	Direction      Direction
	Amount         decimal.Decimal
	ExternalUserID int64
	Note           string
}

type SubmitResult struct {
	Status        SubmitStatus
	Reason        string
	Transaction   *Transaction
	WalletBalance decimal.Decimal
}

// TransactionService is the synchronization orchestrator: it validates a
// request, announces the new balance to the external system and commits the
// local ledger mutation conditioned on that call's outcome.
type TransactionService interface {
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)
}

type TransferStatus string

const (
	TransferStatusOK                TransferStatus = "ok"
	TransferStatusInsufficientFunds TransferStatus = "insufficient_funds"
)

type TransferResult struct {
	Status TransferStatus
}

// CashierService moves value between two local wallets. It never touches
// the external system.
type CashierService interface {
	Transfer(ctx context.Context, fromOwnerID, toOwnerID string, amount decimal.Decimal) (*TransferResult, error)
}
