package sql

import "strings"

// QuoteLiteral returns s as a single-quoted SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdentifier returns s as a double-quoted SQL identifier.
func QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// LikeContains returns an upper-cased '%term%' literal for case-insensitive
// name matching against catalogs that store identifiers in upper case.
// '%' and '_' inside term keep their wildcard meaning.
func LikeContains(term string) string {
	return QuoteLiteral("%" + strings.ToUpper(strings.TrimSpace(term)) + "%")
}
