//go:build integration

package postgres_test

import (
	"database/sql"
	"testing"

	"github.com/phrazzld/bookswap-api/internal/testdb"
)

// migratedDB returns a test database with the schema applied, or skips.
func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db := testdb.GetTestDBWithT(t)
	testdb.SetupTestDatabaseSchema(t, db)
	return db
}
