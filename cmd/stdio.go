package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/koopa0/sprints-mcp/internal/config"
	"github.com/koopa0/sprints-mcp/internal/log"
	mcpserver "github.com/koopa0/sprints-mcp/internal/mcp"
	"github.com/koopa0/sprints-mcp/internal/zoho"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Run the MCP server over stdio",
	Long: `Run the MCP server over standard input/output instead of HTTP.

Use this mode when an MCP client launches sprints-mcp as a subprocess.
All logs go to stderr; stdout carries only protocol messages.`,
	RunE: runStdio,
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}

// runStdio initializes and starts the MCP server on stdio transport.
func runStdio(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
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

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
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

	logger.Info("MCP server ready", "version", AppVersion, "transport", "stdio")

	if err := mcpSrv.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}
