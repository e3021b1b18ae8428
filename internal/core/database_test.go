// AngelaMos | 2026
// database_test.go

package core

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgErr(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
}

func TestPgErrorClassification(t *testing.T) {
	assert.True(t, IsRetryableTx(pgErr(pgerrcode.DeadlockDetected)))
	assert.True(t, IsRetryableTx(pgErr(pgerrcode.SerializationFailure)))
	assert.False(t, IsRetryableTx(pgErr(pgerrcode.UniqueViolation)))
	assert.False(t, IsRetryableTx(nil))

	assert.True(t, IsUniqueViolation(pgErr(pgerrcode.UniqueViolation)))
	assert.True(t, IsForeignKeyViolation(pgErr(pgerrcode.ForeignKeyViolation)))
	assert.False(t, IsForeignKeyViolation(sql.ErrNoRows))

	assert.True(t, IsNoRows(fmt.Errorf("get: %w", sql.ErrNoRows)))
}

func TestJittered(t *testing.T) {
	assert.Equal(t, time.Duration(0), jittered(0))

	base := 40 * time.Minute
	for range 50 {
		d := jittered(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/8)
	}
}
