package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/sprints-mcp/internal/zoho"
)

// Tool error codes exposed to MCP clients. Codes are a controlled enum;
// message bodies pass through from the upstream but never include
// credentials or internal state.
const (
	codeInvalidArgument = "invalid_argument"
	codeAuthError       = "auth_error"
	codeUpstreamError   = "upstream_api_error"
	codeTransportError  = "transport_error"
	codeInternalError   = "internal_error"
)

// toolError is the structured error envelope embedded in IsError results.
type toolError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// jsonResult marshals v into a single text content block.
func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "marshal error"}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

// keyedResult wraps a raw upstream payload under a response key,
// e.g. {"project": <payload>}.
func keyedResult(key string, raw json.RawMessage) *mcp.CallToolResult {
	return jsonResult(map[string]any{key: raw})
}

// listResult wraps a list payload with its element count when known.
func listResult(key string, list zoho.List) *mcp.CallToolResult {
	payload := map[string]any{key: list.Raw}
	if list.Count >= 0 {
		payload["count"] = list.Count
	}
	return jsonResult(payload)
}

// validationError reports a missing or malformed required parameter.
func validationError(field string) *mcp.CallToolResult {
	return errorEnvelope(toolError{
		Code:    codeInvalidArgument,
		Message: fmt.Sprintf("%s is required", field),
	})
}

// errorResult maps a client error to a structured IsError result.
// Nothing is swallowed: every failure reaches the caller with a code,
// and upstream errors keep their status and message passthrough.
func errorResult(logger *slog.Logger, tool string, err error) *mcp.CallToolResult {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		authErr      *zoho.AuthError
		apiErr       *zoho.APIError
		transportErr *zoho.TransportError
	)

	var te toolError
	switch {
	case errors.As(err, &authErr):
		te = toolError{
			Code:       codeAuthError,
			Message:    authErr.Message,
			HTTPStatus: authErr.StatusCode,
		}
		if te.Message == "" {
			te.Message = "authentication with Zoho failed"
		}
	case errors.As(err, &apiErr):
		te = toolError{
			Code:       codeUpstreamError,
			Message:    apiErr.Body,
			HTTPStatus: apiErr.StatusCode,
		}
	case errors.As(err, &transportErr):
		te = toolError{
			Code:    codeTransportError,
			Message: "request to Zoho failed: " + transportErr.Err.Error(),
		}
	default:
		te = toolError{
			Code:    codeInternalError,
			Message: err.Error(),
		}
	}

	logger.Warn("tool call failed",
		"tool", tool,
		"error_code", te.Code,
		"http_status", te.HTTPStatus,
		"error", err,
	)

	return errorEnvelope(te)
}

// errorEnvelope builds the IsError result carrying a structured error.
func errorEnvelope(te toolError) *mcp.CallToolResult {
	b, err := json.Marshal(map[string]toolError{"error": te})
	if err != nil {
		b = []byte(`{"error":{"error_code":"internal_error","message":"error encoding failed"}}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		IsError: true,
	}
}
