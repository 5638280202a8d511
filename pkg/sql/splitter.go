// Package sql provides statement splitting, quoting and search-text checks
// shared by the query executor and the catalog query templates.
package sql

import "strings"

// SplitStatements splits a batch on ';', trims each piece and drops blank ones.
//
// The split is textual: a ';' inside a string literal, comment or compound
// block also terminates a statement.
//
// Example:
//
//	SplitStatements("SELECT 1; ; SELECT 2;")
//	// []string{"SELECT 1", "SELECT 2"}
func SplitStatements(batch string) []string {
	parts := strings.Split(batch, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
