package api

import (
	"log/slog"
	"net/http"
)

// health is a simple liveness probe for Docker/Kubernetes.
// Returns 200 OK with {"status":"ok"} as long as the process is up.
// It deliberately performs no upstream check: Zoho being unreachable
// surfaces as tool errors, not as a dead process.
func health(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// serverInfo is the body of the root metadata endpoint.
type serverInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Transport string            `json:"transport"`
	Endpoints map[string]string `json:"endpoints"`
}

// root describes the server and its endpoints for humans and discovery.
func root(name, version string, logger *slog.Logger) http.HandlerFunc {
	info := serverInfo{
		Name:      name,
		Version:   version,
		Transport: "streamable-http",
		Endpoints: map[string]string{
			"mcp":    "/mcp",
			"health": "/health",
		},
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, info, logger)
	}
}
