package transaction

import (
	"database/sql"

	"github.com/mobcash/mobcash/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"created_at",
	"updated_at",
	"wallet_id",
	"direction",
	"status",
	"amount",
	"note",
	"external_user_id",
	"external_user_name",
	"external_user_email",
	"external_referral_token",
	"external_balance_before",
	"external_balance_after",
	"sync_error",
	"reconcile_required",
}

func scanTransaction(scanner scanner, tx *core.Transaction) error {
	var (
		note      sql.NullString
		syncError sql.NullString
	)

	if err := scanner.Scan(
		&tx.ID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&tx.WalletID,
		&tx.Direction,
		&tx.Status,
		&tx.Amount,
		&note,
		&tx.ExternalUserID,
		&tx.ExternalUserName,
		&tx.ExternalUserEmail,
		&tx.ExternalReferralToken,
		&tx.ExternalBalanceBefore,
		&tx.ExternalBalanceAfter,
		&syncError,
		&tx.ReconcileRequired,
	); err != nil {
		return err
	}

	tx.Note = note.String
	tx.SyncError = syncError.String
	return nil
}
