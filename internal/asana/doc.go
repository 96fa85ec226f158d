// Package asana provides a rate-limited client for the Asana-style
// task-tracking API used by projectpulse.
//
// The client exposes one method per query shape the tools need: tasks with
// filters, a single task, the change-history ("stories") of a task,
// sections of a project, tasks of a section, workspace users and projects.
// Every outbound call passes through a per-client rolling-window rate
// limiter and every response is narrowed from the vendor's loosely typed
// JSON into the explicit record types in types.go before any other code
// touches it.
package asana
