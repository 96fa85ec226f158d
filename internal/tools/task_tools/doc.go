// Package task_tools implements the MCP query tools over tasks: due-date
// queries, activity queries, and aggregate insights (team workload,
// postponement ranking, due-date change history).
//
// Every tool is a stateless, idempotent read: fetch a candidate set from
// the upstream API, filter locally, optionally sort, and wrap the result
// in the shared message/count/payload envelope. Upstream failures become
// error envelopes at the tool boundary; per-task sub-fetch failures inside
// scan loops are logged and skipped.
//
// Date comparisons are lexical over date-only yyyy-MM-dd strings, with
// "today" and the Monday-start week computed from the local clock at call
// time.
package task_tools
