// Package meeting_tools implements the MCP query tools over the calendar
// store: next meeting, today's schedule, title/description search, and
// attendee lookup. The tools are only registered when a meetings database
// is configured.
package meeting_tools
