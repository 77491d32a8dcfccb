package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/koopa0/sprints-mcp/internal/api"
	"github.com/koopa0/sprints-mcp/internal/config"
	"github.com/koopa0/sprints-mcp/internal/log"
	mcpserver "github.com/koopa0/sprints-mcp/internal/mcp"
	"github.com/koopa0/sprints-mcp/internal/observability"
	"github.com/koopa0/sprints-mcp/internal/zoho"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // SSE streaming needs longer timeout
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on the configured address (default 0.0.0.0:8000).

Endpoints:
  /mcp     MCP streamable HTTP transport
  /health  liveness probe
  /        server metadata`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes and starts the HTTP server hosting the MCP transport.
func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting sprints-mcp", "version", AppVersion, "addr", cfg.Addr())

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Tracing.Environment,
		ServiceName: cfg.Tracing.ServiceName,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	// All outbound Zoho calls share one instrumented client.
	httpClient := &http.Client{
		Timeout:   time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	creds, err := zoho.NewCredentials(zoho.CredentialsConfig{
		ClientID:     cfg.ZohoClientID,
		ClientSecret: cfg.ZohoClientSecret,
		RefreshToken: cfg.ZohoRefreshToken,
		TokenURL:     cfg.ZohoAuthURL,
		Scopes:       strings.Split(cfg.ZohoScopes, ","),
		HTTPClient:   httpClient,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating credential store: %w", err)
	}

	client, err := zoho.NewClient(zoho.ClientConfig{
		BaseURL:    cfg.ZohoBaseURL,
		Creds:      creds,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating Zoho client: %w", err)
	}

	mcpSrv, err := mcpserver.NewServer(mcpserver.Config{
		Name:    "sprints-mcp",
		Version: AppVersion,
		Client:  client,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:     logger,
		MCPHandler: mcpSrv.HTTPHandler(),
		Name:       "sprints-mcp",
		Version:    AppVersion,
		TrustProxy: cfg.TrustProxy,
		RateBurst:  cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(apiServer.Handler(), "sprints-mcp"),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", cfg.Addr(),
		"mcp", "/mcp",
		"health", "/health",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}
