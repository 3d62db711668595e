package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	require.True(t, isUniqueViolation(pgErr))
	require.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", pgErr)))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	require.False(t, isUniqueViolation(errors.New("duplicate key value")))
	require.False(t, isUniqueViolation(nil))
}

func TestIsUndefinedTable(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UndefinedTable}

	require.True(t, isUndefinedTable(pgErr))
	require.True(t, isUndefinedTable(fmt.Errorf("query failed: %w", pgErr)))
	require.False(t, isUndefinedTable(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	// plain errors that merely mention the table are not matched
	require.False(t, isUndefinedTable(errors.New(`relation "schema_migrations" does not exist`)))
}
