package wallet

import (
	"github.com/mobcash/mobcash/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWallet(scanner scanner, wallet *core.Wallet) error {
	return scanner.Scan(
		&wallet.ID,
		&wallet.CreatedAt,
		&wallet.OwnerID,
		&wallet.Currency,
		&wallet.Balance,
	)
}
