// Package resources provides MCP resources for exposing workspace data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the authenticated user's profile and the workspace's project and member
// listings.
package resources
