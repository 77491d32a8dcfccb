package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/sprints-mcp/internal/log"
	"github.com/koopa0/sprints-mcp/internal/zoho"
)

// staticCreds is a TokenProvider that always returns the same token, or
// always fails when fail is set.
type staticCreds struct {
	fail bool
}

func (c staticCreds) Token(context.Context) (string, error) {
	if c.fail {
		return "", &zoho.AuthError{Message: "refresh token revoked"}
	}
	return "test-token", nil
}

func (staticCreds) Invalidate(string) {}

// newToolTestServer builds a Server whose Zoho client points at a mock
// upstream. The returned counter tracks upstream requests.
func newToolTestServer(t *testing.T, upstream http.HandlerFunc) (*Server, *atomic.Int64) {
	t.Helper()
	return newToolTestServerWithCreds(t, upstream, staticCreds{})
}

func newToolTestServerWithCreds(t *testing.T, upstream http.HandlerFunc, creds zoho.TokenProvider) (*Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if upstream != nil {
			upstream(w, r)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(mock.Close)

	client, err := zoho.NewClient(zoho.ClientConfig{
		BaseURL: mock.URL,
		Creds:   creds,
		Logger:  log.NewNop(),
	})
	if err != nil {
		t.Fatalf("creating zoho client: %v", err)
	}

	s, err := NewServer(Config{
		Name:    "test-server",
		Version: "0.0.1",
		Client:  client,
		Logger:  log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewServer error = %v", err)
	}
	return s, &requests
}

// connectSession connects an in-memory MCP client session to the server.
func connectSession(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	t1, t2 := mcp.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

// textContent extracts the single text block from a tool result.
func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content blocks = %d, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

// toolErrorObject decodes the structured error envelope from an IsError result.
func toolErrorObject(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var envelope map[string]map[string]any
	if err := json.Unmarshal([]byte(textContent(t, res)), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	obj, ok := envelope["error"]
	if !ok {
		t.Fatalf("no error object in envelope: %s", textContent(t, res))
	}
	return obj
}

func TestNewServer_Validation(t *testing.T) {
	client, err := zoho.NewClient(zoho.ClientConfig{
		BaseURL: "https://example.com",
		Creds:   staticCreds{},
	})
	if err != nil {
		t.Fatalf("creating zoho client: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Version: "1.0.0", Client: client}},
		{"missing version", Config{Name: "s", Client: client}},
		{"missing client", Config{Name: "s", Version: "1.0.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.cfg); err == nil {
				t.Error("NewServer succeeded, want error")
			}
		})
	}
}

func TestListTools_AllRegistered(t *testing.T) {
	s, _ := newToolTestServer(t, nil)
	cs := connectSession(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools error = %v", err)
	}

	want := []string{
		"get_projects", "get_project",
		"get_sprints", "get_sprint",
		"get_items", "get_item",
		"get_epics", "get_epic",
		"get_users", "get_user",
		"get_releases", "get_release",
	}

	got := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}

	for _, name := range want {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
	if len(res.Tools) != len(want) {
		t.Errorf("registered tools = %d, want %d", len(res.Tools), len(want))
	}
}

func TestCallTool_UnknownToolRejected(t *testing.T) {
	s, requests := newToolTestServer(t, nil)
	cs := connectSession(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_timesheets",
		Arguments: map[string]any{},
	})
	if err == nil && (res == nil || !res.IsError) {
		t.Error("unknown tool call succeeded, want method-not-found error")
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("upstream requests = %d, want 0", n)
	}
}

func TestHTTPHandler_NotNil(t *testing.T) {
	s, _ := newToolTestServer(t, nil)
	if s.HTTPHandler() == nil {
		t.Fatal("HTTPHandler() = nil")
	}
}

func TestRun_ServesTransport(t *testing.T) {
	s, _ := newToolTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t1, t2 := mcp.NewInMemoryTransports()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, t1)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}

	tools, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools.Tools) == 0 {
		t.Error("ListTools() returned no tools")
	}

	if err := cs.Close(); err != nil {
		t.Fatalf("closing client session: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
