//go:build !sqlite

package storage

import "fmt"

// newSQLiteStore stands in for internal/storage/sqlite.go's SQLiteStore
// when the sqlite build tag is absent, so cmd/hyperspikectl's --store
// sqlite flag still fails with a clear error instead of a link-time one.
func newSQLiteStore(dbPath string) (Store, error) {
	return nil, fmt.Errorf("storage: sqlite store for %q unavailable in this build; rebuild with -tags sqlite", dbPath)
}
