// Package user_tools implements the MCP query tools over workspace users:
// current-user identity, full listing, and substring search.
package user_tools
