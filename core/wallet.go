package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

// Wallet is the operator-side reserve for one owner. Balance is the
// authoritative local value and is only ever changed through the guarded
// store primitives below, never by read-then-write in caller code.
type Wallet struct {
	ID        uint64          `json:"id,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	OwnerID   string          `json:"owner_id,omitempty"`
	Currency  string          `json:"currency,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

type WalletStore interface {
	// GetOrCreate returns the owner's wallet, creating an empty one on
	// first access.
	GetOrCreate(ctx context.Context, ownerID string) (*Wallet, error)
	Find(ctx context.Context, id uint64) (*Wallet, error)
	// FindOwner looks up an owner's wallet without creating one.
	FindOwner(ctx context.Context, ownerID string) (*Wallet, error)
	// DebitIfSufficient subtracts amount iff the current balance covers it.
	// The check and the write are one atomic conditional update; it
	// reports whether the debit applied.
	DebitIfSufficient(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error)
	// Credit adds amount unconditionally.
	Credit(ctx context.Context, id uint64, amount decimal.Decimal) error
	// Transfer moves amount between two wallets as one atomic unit,
	// locking both rows in ascending id order, and records the
	// WalletTransfer row in the same transaction. It reports false when
	// the source balance is short, in which case nothing was written.
	Transfer(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) (bool, error)
}
