package sqlite

import (
	"strings"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// MemoryDatabase opens a private in-memory database.
const MemoryDatabase = ":memory:"

// BuildConnectionString returns the database file path.
// The network fields of the credentials are ignored. A file path without
// DSN options has foreign key enforcement switched on.
func BuildConnectionString(c datasource.Credentials) string {
	path := c.Database
	if path == "" {
		return MemoryDatabase
	}
	if path == MemoryDatabase || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)"
}
