package instrumentation

import "strings"

// Cardinality management helpers for metrics. High cardinality in metric
// labels inflates memory and storage in the metrics backend; always reduce
// user identifiers before recording them.

// ExtractUserDomain extracts the domain part from an email address,
// reducing cardinality by dropping the local part.
//
// Example:
//
//	ExtractUserDomain("dana@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Common operation types for upstream API metrics.
// Status and service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationSearch = "search"
)
