package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on search text.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Field       string // Name of the input that failed the check
}

// CheckSearchText uses libinjection to detect SQL injection patterns in text
// that will be interpolated into a catalog search template.
//
// Returns nil if the text is clean, or an InjectionCheckResult describing
// the detected pattern.
//
// Example:
//
//	CheckSearchText("search", "CUSTOMER")
//	// nil
//
//	CheckSearchText("search", "' OR '1'='1")
//	// result.IsSQLi == true, result.Field == "search"
func CheckSearchText(field, text string) *InjectionCheckResult {
	if text == "" {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(text)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Field:       field,
	}
}

// CheckSearchInputs checks every named input and returns the first flagged one.
func CheckSearchInputs(inputs map[string]string) *InjectionCheckResult {
	for field, text := range inputs {
		if result := CheckSearchText(field, text); result != nil {
			return result
		}
	}
	return nil
}
