package wallet

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobcash/mobcash/core"
	"github.com/mobcash/mobcash/store/transferlog"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.WalletStore {
	ids, err := lru.New[string, uint64](1024)
	if err != nil {
		panic(err)
	}

	return &store{db: db, ids: ids}
}

type store struct {
	db *nap.DB

	// owner -> wallet id only. The mapping is immutable; balances are not,
	// so wallet rows themselves are never cached.
	ids *lru.Cache[string, uint64]
}

var columns = []string{"id", "created_at", "owner_id", "currency", "balance"}

func (s *store) GetOrCreate(ctx context.Context, ownerID string) (*core.Wallet, error) {
	if id, ok := s.ids.Get(ownerID); ok {
		return s.find(ctx, s.db.Master(), id)
	}

	b := sq.Insert("wallets").
		Options("IGNORE").
		Columns("owner_id", "currency", "balance").
		Values(ownerID, core.DefaultCurrency, decimal.Zero)

	if _, err := b.RunWith(s.db.Master()).ExecContext(ctx); err != nil {
		return nil, err
	}

	// read from master: the row may have been created a moment ago
	w, err := s.findOwner(ctx, s.db.Master(), ownerID)
	if err != nil {
		return nil, err
	}

	s.ids.Add(ownerID, w.ID)
	return w, nil
}

func (s *store) Find(ctx context.Context, id uint64) (*core.Wallet, error) {
	return s.find(ctx, s.db, id)
}

func (s *store) find(ctx context.Context, r sq.BaseRunner, id uint64) (*core.Wallet, error) {
	b := sq.Select(columns...).From("wallets").Where(sq.Eq{"id": id})
	row := b.RunWith(r).QueryRowContext(ctx)

	var wallet core.Wallet
	if err := scanWallet(row, &wallet); err != nil {
		return nil, err
	}

	return &wallet, nil
}

func (s *store) FindOwner(ctx context.Context, ownerID string) (*core.Wallet, error) {
	return s.findOwner(ctx, s.db, ownerID)
}

func (s *store) findOwner(ctx context.Context, r sq.BaseRunner, ownerID string) (*core.Wallet, error) {
	b := sq.Select(columns...).From("wallets").Where(sq.Eq{"owner_id": ownerID})
	row := b.RunWith(r).QueryRowContext(ctx)

	var wallet core.Wallet
	if err := scanWallet(row, &wallet); err != nil {
		return nil, err
	}

	return &wallet, nil
}

// debitSQL builds the guarded conditional debit. The sufficiency check and
// the subtraction are one statement; two concurrent debits can never both
// pass on the same funds.
func debitSQL(id uint64, amount decimal.Decimal) sq.UpdateBuilder {
	return sq.Update("wallets").
		Set("balance", sq.Expr("balance - ?", amount)).
		Where("id = ? AND balance >= ?", id, amount)
}

func (s *store) DebitIfSufficient(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error) {
	result, err := debitSQL(id, amount).RunWith(s.db.Master()).ExecContext(ctx)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *store) Credit(ctx context.Context, id uint64, amount decimal.Decimal) error {
	b := sq.Update("wallets").
		Set("balance", sq.Expr("balance + ?", amount)).
		Where(sq.Eq{"id": id})

	_, err := b.RunWith(s.db.Master()).ExecContext(ctx)
	return err
}

// lockOrder returns the two wallet ids in the fixed global lock order.
func lockOrder(a, b uint64) (uint64, uint64) {
	if b < a {
		return b, a
	}

	return a, b
}

func lockWallet(ctx context.Context, tx *sql.Tx, id uint64) error {
	var locked uint64
	return tx.QueryRowContext(ctx, "SELECT `id` FROM `wallets` WHERE `id` = ? FOR UPDATE", id).Scan(&locked)
}

func (s *store) Transfer(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) (bool, error) {
	tx := generic.Must(s.db.Begin())
	defer tx.Rollback()

	first, second := lockOrder(fromID, toID)
	for _, id := range []uint64{first, second} {
		if err := lockWallet(ctx, tx, id); err != nil {
			return false, err
		}
	}

	result, err := debitSQL(fromID, amount).RunWith(tx).ExecContext(ctx)
	if err != nil {
		return false, err
	}

	if n := generic.Must(result.RowsAffected()); n == 0 {
		return false, nil
	}

	b := sq.Update("wallets").
		Set("balance", sq.Expr("balance + ?", amount)).
		Where(sq.Eq{"id": toID})
	if _, err := b.RunWith(tx).ExecContext(ctx); err != nil {
		return false, err
	}

	if err := transferlog.Insert(ctx, tx, &core.WalletTransfer{
		FromWalletID: fromID,
		ToWalletID:   toID,
		Amount:       amount,
	}); err != nil {
		return false, err
	}

	return true, tx.Commit()
}
