// Package mcp implements the Model Context Protocol (MCP) server that
// exposes Zoho Sprints project data as callable tools.
//
// The server registers one read-only tool per Sprints resource
// (projects, sprints, items, epics, users, releases), each mapping to a
// single authenticated GET against the upstream API. Tool inputs are
// typed structs whose JSON schemas are inferred with jsonschema-go, and
// handlers build responses inline following the net/http.Handler style:
// no conversion layer between the Zoho client and the MCP result.
//
// Errors are split into two kinds:
//
//   - Protocol errors: unknown tools and schema violations, handled by
//     the MCP SDK (method-not-found / invalid-params semantics).
//   - Tool errors: validation, auth, upstream and transport failures,
//     returned as IsError results carrying a structured envelope
//     {"error": {"error_code", "message", "http_status"}}.
//
// Transports: Run serves any mcp.Transport (stdio, in-memory);
// HTTPHandler exposes the streamable HTTP transport for mounting into
// the HTTP server at /mcp.
package mcp
