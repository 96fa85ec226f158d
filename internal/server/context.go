package server

import (
	"context"
	"log/slog"
	"sync"

	"projectpulse/internal/asana"
	"projectpulse/internal/config"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/logging"
	"projectpulse/internal/meetings"
)

// ServerContext holds the shared dependencies for the MCP server.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	asanaClient   *asana.Client
	meetingsStore *meetings.Store

	provider    *instrumentation.Provider
	auditLogger *instrumentation.AuditLogger

	workspace   string
	currentUser string

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context with an Asana client wired up
// from configuration. The meetings store is optional: when no database URL
// is configured the meeting tools are simply not registered.
func NewServerContext(ctx context.Context, cfg *config.Config, provider *instrumentation.Provider) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	opts := []asana.Option{
		asana.WithRateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, asana.WithBaseURL(cfg.BaseURL))
	}
	if provider != nil && provider.Metrics() != nil {
		opts = append(opts, asana.WithMetrics(provider.Metrics()))
	}
	asanaClient := asana.NewClient(shutdownCtx, cfg.AccessToken, cfg.WorkspaceID, opts...)

	var meetingsStore *meetings.Store
	if cfg.MeetingsDatabaseURL != "" {
		store, err := meetings.Connect(shutdownCtx, cfg.MeetingsDatabaseURL)
		if err != nil {
			// Meeting tools are an optional surface; keep the task tools
			// available even when the meetings database is unreachable.
			slog.Warn("failed to connect meetings store, meeting tools disabled",
				logging.Service(instrumentation.ServiceMeetings), logging.Err(err))
		} else {
			meetingsStore = store
		}
	}

	auditConfig := instrumentation.DefaultConfig().AuditLogging
	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		asanaClient:   asanaClient,
		meetingsStore: meetingsStore,
		provider:      provider,
		auditLogger:   instrumentation.NewAuditLoggerWithConfig(slog.Default(), auditConfig),
		workspace:     cfg.WorkspaceID,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// AsanaClient returns the Asana API client.
func (sc *ServerContext) AsanaClient() *asana.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.asanaClient
}

// SetAsanaClient replaces the Asana API client. Used by tests.
func (sc *ServerContext) SetAsanaClient(client *asana.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.asanaClient = client
}

// MeetingsStore returns the meetings store, or nil when no meetings
// database is configured.
func (sc *ServerContext) MeetingsStore() *meetings.Store {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.meetingsStore
}

// SetMeetingsStore replaces the meetings store. Used by tests.
func (sc *ServerContext) SetMeetingsStore(store *meetings.Store) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.meetingsStore = store
}

// Workspace returns the configured workspace identifier.
func (sc *ServerContext) Workspace() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.workspace
}

// CurrentUser returns the email of the authenticated user, or "" until a
// profile lookup has resolved it.
func (sc *ServerContext) CurrentUser() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.currentUser
}

// SetCurrentUser records the authenticated user's email once known, so
// audit records can attribute subsequent calls.
func (sc *ServerContext) SetCurrentUser(email string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.currentUser = email
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil {
		return nil
	}
	return sc.provider.Metrics()
}

// Provider returns the instrumentation provider, which may be nil.
func (sc *ServerContext) Provider() *instrumentation.Provider {
	return sc.provider
}

// AuditLogger returns the audit logger for tool invocations.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and releases held resources.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	if sc.meetingsStore != nil {
		sc.meetingsStore.Close()
	}
	sc.cancel()
	return nil
}
