package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
)

func (d Direction) Valid() bool {
	return d == DirectionDeposit || d == DirectionWithdraw
}

type SyncStatus string

const (
	// SyncStatusPending only lives in storage for the duration of the
	// external call. A pending row left behind after the request finished
	// means the process died mid-flight.
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// Transaction is one attempt to move value against the external balance
// service. The external identity fields are snapshotted at creation time and
// never re-resolved; the external system is not transactionally coupled to
// this store, so a live reference would lie.
type Transaction struct {
	ID        uint64     `json:"id,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
	WalletID  uint64     `json:"wallet_id,omitempty"`
	Direction Direction  `json:"direction,omitempty"`
	Status    SyncStatus `json:"status,omitempty"`

	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`

	ExternalUserID        int64  `json:"external_user_id,omitempty"`
	ExternalUserName      string `json:"external_user_name,omitempty"`
	ExternalUserEmail     string `json:"external_user_email,omitempty"`
	ExternalReferralToken string `json:"external_referral_token,omitempty"`

	ExternalBalanceBefore decimal.NullDecimal `json:"external_balance_before,omitempty"`
	ExternalBalanceAfter  decimal.NullDecimal `json:"external_balance_after,omitempty"`

	SyncError         string `json:"sync_error,omitempty"`
	ReconcileRequired bool   `json:"reconcile_required,omitempty"`
}

type TransactionStore interface {
	// Create persists the row with its current (pending) status and fills
	// in the assigned id.
	Create(ctx context.Context, tx *Transaction) error
	// UpdateStatus moves the row from its current status to a terminal
	// one, persisting the balance snapshots and sync error along the way.
	// The transition is guarded optimistically on the current status;
	// terminal states are never left.
	UpdateStatus(ctx context.Context, tx *Transaction, to SyncStatus) error
	// MarkReconcileRequired flags a synced row whose matching local debit
	// did not apply. The flag is only ever set, never cleared here;
	// clearing is a manual reconciliation action.
	MarkReconcileRequired(ctx context.Context, id uint64) error
	ListRecent(ctx context.Context, walletID uint64, limit int) ([]*Transaction, error)
	ListAllRecent(ctx context.Context, limit int) ([]*Transaction, error)
	ListStatus(ctx context.Context, status SyncStatus, sinceID uint64, limit int) ([]*Transaction, error)
	ListReconcileRequired(ctx context.Context, sinceID uint64, limit int) ([]*Transaction, error)
	CountStatus(ctx context.Context, status SyncStatus) (int64, error)
}
