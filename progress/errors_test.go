package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTxErrClassification(t *testing.T) {
	t.Run("domain errors pass through", func(t *testing.T) {
		in := &NotFoundError{Resource: "lesson", ID: 7}
		assert.Same(t, error(in), txErr(in))

		wrapped := storeErr("load lesson", errors.New("connection refused"))
		assert.Same(t, wrapped, txErr(wrapped))
	})

	t.Run("conflict-shaped errors become ConcurrencyError", func(t *testing.T) {
		for _, msg := range []string{
			"deadlock detected",
			"could not serialize access due to concurrent update",
			"database is locked",
			`duplicate key value violates unique constraint "idx_ledger_user_module" (SQLSTATE 23505)`,
			"UNIQUE constraint failed: module_progresses.user_id, module_progresses.module_id",
		} {
			var cce *ConcurrencyError
			require.ErrorAs(t, txErr(errors.New(msg)), &cce, msg)
		}
	})

	t.Run("duplicate key stays a conflict when wrapped as a store error", func(t *testing.T) {
		// Two first-completions racing for the same learner and module both
		// lazily create the entry; the loser's save fails on the unique index
		// and must come back retryable.
		wrapped := storeErr("save ledger entry",
			errors.New(`duplicate key value violates unique constraint "idx_ledger_user_module" (SQLSTATE 23505)`))
		var cce *ConcurrencyError
		require.ErrorAs(t, txErr(wrapped), &cce)
	})

	t.Run("gorm duplicated key sentinel is a conflict", func(t *testing.T) {
		var cce *ConcurrencyError
		require.ErrorAs(t, txErr(gorm.ErrDuplicatedKey), &cce)
	})

	t.Run("everything else is infrastructure", func(t *testing.T) {
		var ife *InfrastructureError
		require.ErrorAs(t, txErr(errors.New("disk full")), &ife)
	})
}
