// Package server provides the MCP server context, health checks, and the
// dedicated metrics server for the projectpulse application.
//
// # Key Components
//
// ServerContext holds the shared dependencies for tool handlers: the
// rate-limited Asana client, the optional meetings store, and the
// instrumentation provider. It owns the lifecycle of those dependencies
// and releases them on Shutdown.
//
// HealthChecker exposes /healthz and /readyz endpoints for liveness and
// readiness probes. Readiness flips to unavailable once shutdown begins so
// load balancers drain traffic before the process exits.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolating
// operational metrics from the MCP transport.
package server
