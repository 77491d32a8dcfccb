package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// ServerConfig contains configuration for creating the HTTP server.
type ServerConfig struct {
	Logger     *slog.Logger
	MCPHandler http.Handler // Required: streamable HTTP MCP transport
	Name       string       // Server name reported by the root endpoint
	Version    string       // Server version reported by the root endpoint
	TrustProxy bool         // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst  int          // Rate limiter burst size per IP (0 = default 60)
}

// Server is the HTTP server hosting the MCP transport.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.MCPHandler == nil {
		return nil, errors.New("mcp handler is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	// MCP streamable HTTP transport. The SDK handler dispatches on method
	// itself (POST for messages, GET for SSE, DELETE for session teardown).
	mux.Handle("/mcp", cfg.MCPHandler)

	// Server metadata for humans and discovery.
	mux.HandleFunc("GET /{$}", root(cfg.Name, cfg.Version, logger))

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Use a top-level mux to separate the health probe from the middleware
	// stack: probes must never be rate limited.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
