// Package project_tools implements the MCP query tools over projects and
// sections: listing, exact case-insensitive name lookup, per-section
// completion status, and section task listings.
package project_tools
