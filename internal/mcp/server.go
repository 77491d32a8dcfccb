package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/sprints-mcp/internal/zoho"
)

// Server wraps the MCP SDK server and the Zoho Sprints client.
type Server struct {
	mcpServer *mcp.Server
	client    *zoho.Client
	logger    *slog.Logger
	name      string
	version   string
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Client  *zoho.Client
	Logger  *slog.Logger
}

// NewServer creates a new MCP server with all Sprints tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("zoho client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		client:    cfg.Client,
		logger:    logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport.
// This is a blocking call that handles all MCP protocol communication.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// HTTPHandler returns the streamable HTTP transport handler for the
// server, suitable for mounting at /mcp.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// addTool infers the input schema for In and registers a tool handler.
func addTool[In any](s *Server, name, description string, h mcp.ToolHandlerFor[In, any]) error {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("creating input schema for %s: %w", name, err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, h)

	return nil
}

// registerTools registers every Sprints tool on the MCP server.
func (s *Server) registerTools() error {
	registrations := []struct {
		name string
		fn   func() error
	}{
		{"get_projects", s.registerGetProjects},
		{"get_project", s.registerGetProject},
		{"get_sprints", s.registerGetSprints},
		{"get_sprint", s.registerGetSprint},
		{"get_items", s.registerGetItems},
		{"get_item", s.registerGetItem},
		{"get_epics", s.registerGetEpics},
		{"get_epic", s.registerGetEpic},
		{"get_users", s.registerGetUsers},
		{"get_user", s.registerGetUser},
		{"get_releases", s.registerGetReleases},
		{"get_release", s.registerGetRelease},
	}

	for _, r := range registrations {
		if err := r.fn(); err != nil {
			return fmt.Errorf("registering %s: %w", r.name, err)
		}
	}

	return nil
}
