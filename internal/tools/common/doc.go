// Package common provides shared utilities for MCP tool implementations.
// It contains the result envelope builders and the instrumentation wrapper
// used across all tool packages to ensure consistent behavior.
package common
