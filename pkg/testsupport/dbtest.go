package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory SQLite database. Each call
// gets its own namespace so parallel tests never share state.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("folio_test_%d", dbSeq.Add(1))
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
