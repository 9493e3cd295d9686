package transaction

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mobcash/mobcash/core"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.TransactionStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

func (s *store) Create(ctx context.Context, tx *core.Transaction) error {
	b := sq.Insert("transactions").
		Columns(
			"wallet_id",
			"direction",
			"status",
			"amount",
			"note",
			"external_user_id",
			"external_user_name",
			"external_user_email",
			"external_referral_token",
		).
		Values(
			tx.WalletID,
			tx.Direction,
			tx.Status,
			tx.Amount,
			tx.Note,
			tx.ExternalUserID,
			tx.ExternalUserName,
			tx.ExternalUserEmail,
			tx.ExternalReferralToken,
		)

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	tx.ID = uint64(id)
	return nil
}

func (s *store) UpdateStatus(ctx context.Context, tx *core.Transaction, to core.SyncStatus) error {
	b := sq.Update("transactions").
		Set("status", to).
		Set("external_balance_before", tx.ExternalBalanceBefore).
		Set("external_balance_after", tx.ExternalBalanceAfter).
		Set("sync_error", tx.SyncError).
		Where("id = ? AND status = ?", tx.ID, tx.Status)

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("optimistic lock failed")
	}

	tx.Status = to
	return nil
}

func (s *store) MarkReconcileRequired(ctx context.Context, id uint64) error {
	b := sq.Update("transactions").
		Set("reconcile_required", true).
		Where(sq.Eq{"id": id})

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *store) ListRecent(ctx context.Context, walletID uint64, limit int) ([]*core.Transaction, error) {
	b := sq.Select(scanColumns...).
		From("transactions").
		Where(sq.Eq{"wallet_id": walletID}).
		OrderBy("id DESC").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *store) ListAllRecent(ctx context.Context, limit int) ([]*core.Transaction, error) {
	b := sq.Select(scanColumns...).
		From("transactions").
		OrderBy("id DESC").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *store) ListStatus(ctx context.Context, status core.SyncStatus, sinceID uint64, limit int) ([]*core.Transaction, error) {
	b := sq.Select(scanColumns...).
		From("transactions").
		Where("status = ? AND id > ?", status, sinceID).
		OrderBy("id").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *store) ListReconcileRequired(ctx context.Context, sinceID uint64, limit int) ([]*core.Transaction, error) {
	b := sq.Select(scanColumns...).
		From("transactions").
		Where("reconcile_required = ? AND id > ?", true, sinceID).
		OrderBy("id").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *store) CountStatus(ctx context.Context, status core.SyncStatus) (int64, error) {
	b := sq.Select("COUNT(*)").
		From("transactions").
		Where(sq.Eq{"status": status})

	var n int64
	err := b.RunWith(s.db).QueryRowContext(ctx).Scan(&n)
	return n, err
}

func (s *store) list(ctx context.Context, b sq.SelectBuilder) ([]*core.Transaction, error) {
	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var txs []*core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, err
		}

		txs = append(txs, &tx)
	}

	return txs, rows.Err()
}
