package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransfer is the immutable record of a completed internal move
// between two wallets. Rows are written only as a byproduct of a successful
// transfer and never edited or deleted.
type WalletTransfer struct {
	ID           uint64          `json:"id,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	FromWalletID uint64          `json:"from_wallet_id,omitempty"`
	ToWalletID   uint64          `json:"to_wallet_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

type TransferStore interface {
	List(ctx context.Context, limit int) ([]*WalletTransfer, error)
}
