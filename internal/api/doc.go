// Package api provides the HTTP surface for the Zoho Sprints MCP server.
//
// The server exposes three endpoints:
//
//	GET  /        →  server metadata (name, version, endpoints)
//	GET  /health  →  liveness probe, bypasses all middleware
//	     /mcp     →  MCP streamable HTTP transport (GET/POST/DELETE)
//
// Middleware order (outermost first):
//
//	Recovery → RequestID → Logging → RateLimit → Routes
//
// /health is mounted on a top-level mux outside the middleware stack so
// orchestrator probes are never rate limited and never depend on the
// Zoho API being reachable.
//
// File structure:
//   - server.go: mux assembly and middleware stack
//   - middleware.go: recovery, request ID, request logging
//   - ratelimit.go: per-IP token bucket rate limiting
//   - health.go: liveness probe and root metadata endpoint
//   - response.go: JSON response helpers
package api
