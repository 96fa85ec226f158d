// Package logging provides structured logging utilities for projectpulse.
//
// It centralizes logging patterns on the standard library's slog package:
// consistent attribute naming, PII sanitization (email anonymization,
// token masking), and a small Logger adapter interface for code that does
// not want to depend on slog directly.
package logging
