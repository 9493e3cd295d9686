package store

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsErrRetryable reports whether the storage error is a transient lock
// failure the caller may retry. The orchestrator never retries on its own;
// the decision belongs to the submitter.
func IsErrRetryable(err error) bool {
	var merr *mysql.MySQLError
	if !errors.As(err, &merr) {
		return false
	}

	// 1205 lock wait timeout, 1213 deadlock victim
	return merr.Number == 1205 || merr.Number == 1213
}
