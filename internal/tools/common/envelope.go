package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Result builds the success envelope every query tool returns:
// a message, a count, and the payload under a tool-specific key.
// The shape is consumed by a language-model caller, so it must stay
// consistent across tools.
func Result(message string, count int, dataKey string, data interface{}) (*mcp.CallToolResult, error) {
	envelope := map[string]interface{}{
		"message": message,
		"count":   count,
		dataKey:   data,
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ResultWith builds a success envelope with multiple payload keys, for
// tools whose result carries more than one collection or aggregate.
func ResultWith(message string, count int, data map[string]interface{}) (*mcp.CallToolResult, error) {
	envelope := map[string]interface{}{
		"message": message,
		"count":   count,
	}
	for k, v := range data {
		envelope[k] = v
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ErrorResult builds the failure envelope. Upstream failures never cross
// the tool boundary as errors; they are flattened into the same JSON shape
// with zero-valued counts and an empty collection. The result is marked
// IsError so instrumentation and audit records count the call as failed
// while the caller still receives the structured envelope.
func ErrorResult(errMsg string, dataKey string) (*mcp.CallToolResult, error) {
	envelope := map[string]interface{}{
		"error": errMsg,
		"count": 0,
		dataKey: []interface{}{},
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(errMsg), nil
	}
	result := mcp.NewToolResultText(string(payload))
	result.IsError = true
	return result, nil
}
