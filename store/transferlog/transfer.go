package transferlog

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/mobcash/mobcash/core"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.TransferStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

// Insert appends the immutable transfer record. It is also executed inside
// the wallet store's transfer transaction so the move and its record commit
// or roll back together.
func Insert(ctx context.Context, r sq.BaseRunner, transfer *core.WalletTransfer) error {
	b := sq.Insert("wallet_transfers").
		Columns("from_wallet_id", "to_wallet_id", "amount").
		Values(transfer.FromWalletID, transfer.ToWalletID, transfer.Amount)

	result, err := b.RunWith(r).ExecContext(ctx)
	if err != nil {
		return err
	}

	if id, err := result.LastInsertId(); err == nil {
		transfer.ID = uint64(id)
	}

	return nil
}

func (s *store) List(ctx context.Context, limit int) ([]*core.WalletTransfer, error) {
	b := sq.Select("id", "created_at", "from_wallet_id", "to_wallet_id", "amount").
		From("wallet_transfers").
		OrderBy("id DESC").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var transfers []*core.WalletTransfer
	for rows.Next() {
		var transfer core.WalletTransfer
		if err := rows.Scan(
			&transfer.ID,
			&transfer.CreatedAt,
			&transfer.FromWalletID,
			&transfer.ToWalletID,
			&transfer.Amount,
		); err != nil {
			return nil, err
		}

		transfers = append(transfers, &transfer)
	}

	return transfers, rows.Err()
}
