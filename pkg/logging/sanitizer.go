package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a statement to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx up to the next delimiter.
	// Covers both DB2 descriptors (PWD=secret;) and key-value DSNs.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials in URL style connection strings.
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s?]+`)

	// Matches the password component passed as a URL query value (?password=...).
	queryPasswordPattern = regexp.MustCompile(`(?i)([?&]password)=[^&\s]+`)
)

// SanitizeConnectionString removes sensitive data from connection descriptors.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := queryPasswordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might echo credentials back.
// Drivers frequently include the full descriptor in open failures.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeConnectionString(err.Error())
}

// SanitizeQuery truncates and sanitizes a SQL statement for logging
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := TruncateString(query, MaxQueryLogLength)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
