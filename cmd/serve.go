package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/config"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/logging"
	"projectpulse/internal/resources"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/meeting_tools"
	"projectpulse/internal/tools/project_tools"
	"projectpulse/internal/tools/task_tools"
	"projectpulse/internal/tools/user_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide project-management
insight tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Configuration is read from the environment:
  ASANA_ACCESS_TOKEN      (required) bearer token for the task API
  ASANA_WORKSPACE_ID      (required) workspace scoping all queries
  ASANA_BASE_URL          override the upstream API root
  RATE_LIMIT_PER_MINUTE   outbound request ceiling (default 100)
  MEETINGS_DATABASE_URL   PostgreSQL URL for the meeting calendar (optional)
  HTTP_ADDR               address for streamable-http transport
  LOG_LEVEL               debug, info, warn or error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runServe(cmd, transport, debugMode, httpAddr, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport). Can also use HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cmd *cobra.Command, transport string, debugMode bool, httpAddr string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if debugMode {
		cfg.LogLevel = "debug"
	}
	logging.Setup(cfg.LogLevel)
	slog.Debug("configuration loaded",
		logging.Workspace(cfg.WorkspaceID),
		"token", logging.SanitizeToken(cfg.AccessToken),
		"rate_limit", cfg.RateLimitPerMinute)

	httpAddr = resolveHTTPAddr(cmd, httpAddr, cfg.HTTPAddr)

	// Load metrics config from environment if not set via flags
	if !cmd.Flags().Changed("metrics-enabled") {
		if os.Getenv("METRICS_ENABLED") == "false" {
			metricsConfig.Enabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Endpoint:                instrConfig.PrometheusEndpoint,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Give the metrics server a moment to fail on bind errors
		select {
		case err := <-metricsErr:
			if err != nil {
				return fmt.Errorf("metrics server failed to start: %w", err)
			}
		case <-time.After(100 * time.Millisecond):
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		}
	}

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, provider)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during metrics server shutdown", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("projectpulse", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(mcpSrv, serverContext, shutdownCtx, httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// resolveHTTPAddr picks the HTTP address: an explicitly set flag wins over
// the HTTP_ADDR environment variable, which wins over the flag default.
func resolveHTTPAddr(cmd *cobra.Command, flagAddr, envAddr string) string {
	if cmd != nil && cmd.Flags().Changed("http-addr") {
		return flagAddr
	}
	if envAddr != "" {
		return envAddr
	}
	return flagAddr
}

// registerAllTools registers all MCP tools and resources.
// Meeting tools are only registered when a meetings store is configured.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Task",
			register: func() error {
				return task_tools.RegisterTaskTools(mcpSrv, sc)
			},
		},
		{
			name: "Project",
			register: func() error {
				return project_tools.RegisterProjectTools(mcpSrv, sc)
			},
		},
		{
			name: "User",
			register: func() error {
				return user_tools.RegisterUserTools(mcpSrv, sc)
			},
		},
		{
			name: "Workspace Resources",
			register: func() error {
				return resources.RegisterWorkspaceResources(mcpSrv, sc)
			},
		},
	}

	if sc.MeetingsStore() != nil {
		registrations = append(registrations, toolRegistration{
			name: "Meeting",
			register: func() error {
				return meeting_tools.RegisterMeetingTools(mcpSrv, sc)
			},
		})
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// withHTTPMetrics records request counts and latency for a handler. A nil
// metrics recorder passes the handler through untouched.
func withHTTPMetrics(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder captures the response status code. Flush is forwarded so
// streaming responses keep working behind the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// newMCPHTTPServer builds the HTTP server carrying MCP traffic. No write
// deadline is set: the upstream rate limiter can legitimately hold a tool
// call until its 60-second window resets, and the response envelope must
// still reach the caller afterwards.
func newMCPHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", withHTTPMetrics(sc.Metrics(), mcpHandler))

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := newMCPHTTPServer(addr, mux)

	slog.Info("starting streamable HTTP server",
		"addr", addr, "endpoint", "/mcp", "health", "/healthz /readyz")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server stopped")
	return nil
}
