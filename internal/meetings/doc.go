// Package meetings provides a read-only client for the calendar data
// store backing the meeting tools. Meetings are stored in Postgres; the
// store supports time-range queries, substring search over title and
// description, and attendee lookup via JSONB containment. Cancelled
// meetings are excluded from every query.
package meetings
