package cashier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mobcash/mobcash/core"
	"github.com/shopspring/decimal"
)

func New(wallets core.WalletStore, logger *slog.Logger) core.CashierService {
	return &service{
		wallets: wallets,
		logger:  logger.With("service", "cashier"),
	}
}

type service struct {
	wallets core.WalletStore
	logger  *slog.Logger
}

// Transfer moves amount between two owners entirely within the local ledger.
// The all-or-nothing semantics live in the wallet store; this layer only
// validates and resolves wallets.
func (s *service) Transfer(ctx context.Context, fromOwnerID, toOwnerID string, amount decimal.Decimal) (*core.TransferResult, error) {
	switch {
	case fromOwnerID == "" || toOwnerID == "":
		return nil, fmt.Errorf("%w: missing owner", core.ErrInvalidRequest)
	case fromOwnerID == toOwnerID:
		return nil, fmt.Errorf("%w: transfer to self", core.ErrInvalidRequest)
	case !amount.IsPositive():
		return nil, fmt.Errorf("%w: amount must be positive", core.ErrInvalidRequest)
	case !amount.Equal(amount.Truncate(2)):
		return nil, fmt.Errorf("%w: amount must have at most 2 decimal places", core.ErrInvalidRequest)
	}

	from, err := s.wallets.GetOrCreate(ctx, fromOwnerID)
	if err != nil {
		return nil, fmt.Errorf("wallets.GetOrCreate: %w", err)
	}

	to, err := s.wallets.GetOrCreate(ctx, toOwnerID)
	if err != nil {
		return nil, fmt.Errorf("wallets.GetOrCreate: %w", err)
	}

	ok, err := s.wallets.Transfer(ctx, from.ID, to.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallets.Transfer: %w", err)
	}

	if !ok {
		return &core.TransferResult{Status: core.TransferStatusInsufficientFunds}, nil
	}

	s.logger.Info("transfer done", "from", fromOwnerID, "to", toOwnerID, "amount", amount)
	return &core.TransferResult{Status: core.TransferStatusOK}, nil
}
