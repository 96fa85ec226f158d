package common

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestResult_Envelope(t *testing.T) {
	result, err := Result("Found 2 tasks due today.", 2, "tasks", []map[string]string{
		{"name": "Write report"},
		{"name": "Review budget"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &envelope))

	assert.Equal(t, "Found 2 tasks due today.", envelope["message"])
	assert.Equal(t, float64(2), envelope["count"])

	tasks, ok := envelope["tasks"].([]interface{})
	require.True(t, ok, "tasks should be an array")
	assert.Len(t, tasks, 2)
}

func TestResult_EmptyCollection(t *testing.T) {
	result, err := Result(`No tasks found matching "nothing".`, 0, "tasks", []interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &envelope))

	assert.Equal(t, float64(0), envelope["count"])
	tasks, ok := envelope["tasks"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, tasks)
}

func TestErrorResult_Envelope(t *testing.T) {
	result, err := ErrorResult("Failed to fetch tasks: upstream unavailable", "tasks")
	require.NoError(t, err)
	require.True(t, result.IsError, "failure envelope must be marked so metrics and audit see it")

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &envelope))

	assert.Equal(t, "Failed to fetch tasks: upstream unavailable", envelope["error"])
	assert.Equal(t, float64(0), envelope["count"])

	tasks, ok := envelope["tasks"].([]interface{})
	require.True(t, ok, "tasks should be an empty array")
	assert.Empty(t, tasks)
}
