package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koopa0/sprints-mcp/internal/log"
)

// newTokenServer returns a test OAuth token endpoint that counts refresh
// calls and hands out sequentially numbered access tokens.
func newTokenServer(t *testing.T, refreshes *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing token request form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want %q", got, "refresh_token")
		}
		if got := r.Form.Get("refresh_token"); got != "test-refresh" {
			t.Errorf("refresh_token = %q, want %q", got, "test-refresh")
		}

		n := refreshes.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("access-%d", n),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCredentials(t *testing.T, tokenURL string) *Credentials {
	t.Helper()
	creds, err := NewCredentials(CredentialsConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "test-refresh",
		TokenURL:     tokenURL,
		Logger:       log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewCredentials error = %v", err)
	}
	return creds
}

func TestNewCredentials_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  CredentialsConfig
	}{
		{"missing client id", CredentialsConfig{ClientSecret: "s", RefreshToken: "r", TokenURL: "u"}},
		{"missing client secret", CredentialsConfig{ClientID: "c", RefreshToken: "r", TokenURL: "u"}},
		{"missing refresh token", CredentialsConfig{ClientID: "c", ClientSecret: "s", TokenURL: "u"}},
		{"missing token URL", CredentialsConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCredentials(tt.cfg); err == nil {
				t.Error("NewCredentials succeeded, want error")
			}
		})
	}
}

func TestToken_RefreshesOnceAndCaches(t *testing.T) {
	var refreshes atomic.Int64
	srv := newTokenServer(t, &refreshes)
	creds := newTestCredentials(t, srv.URL)

	ctx := context.Background()
	tok, err := creds.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok != "access-1" {
		t.Errorf("Token() = %q, want %q", tok, "access-1")
	}

	// Second call must reuse the cached token.
	tok2, err := creds.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok2 != tok {
		t.Errorf("second Token() = %q, want cached %q", tok2, tok)
	}
	if got := refreshes.Load(); got != 1 {
		t.Errorf("refresh count = %d, want 1", got)
	}
}

func TestToken_RefreshesOnExpiry(t *testing.T) {
	var refreshes atomic.Int64
	srv := newTokenServer(t, &refreshes)
	creds := newTestCredentials(t, srv.URL)

	ctx := context.Background()
	if _, err := creds.Token(ctx); err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	// Move the clock past the token lifetime.
	creds.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tok, err := creds.Token(ctx)
	if err != nil {
		t.Fatalf("Token() after expiry error = %v", err)
	}
	if tok != "access-2" {
		t.Errorf("Token() after expiry = %q, want %q", tok, "access-2")
	}
	if got := refreshes.Load(); got != 2 {
		t.Errorf("refresh count = %d, want 2", got)
	}
}

func TestToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	var refreshes atomic.Int64
	srv := newTokenServer(t, &refreshes)
	creds := newTestCredentials(t, srv.URL)

	const n = 25
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = creds.Token(context.Background())
		}()
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if tokens[i] != "access-1" {
			t.Errorf("caller %d token = %q, want %q", i, tokens[i], "access-1")
		}
	}
	if got := refreshes.Load(); got != 1 {
		t.Errorf("refresh count under concurrency = %d, want 1", got)
	}
}

func TestToken_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	creds := newTestCredentials(t, srv.URL)

	_, err := creds.Token(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Token() error = %v, want *AuthError", err)
	}
	if authErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", authErr.StatusCode, http.StatusBadRequest)
	}
}

func TestToken_ProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing is listening anymore

	creds := newTestCredentials(t, srv.URL)

	_, err := creds.Token(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Token() error = %v, want *AuthError", err)
	}
	if authErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for unreachable provider", authErr.StatusCode)
	}
}

func TestInvalidate(t *testing.T) {
	var refreshes atomic.Int64
	srv := newTokenServer(t, &refreshes)
	creds := newTestCredentials(t, srv.URL)

	ctx := context.Background()
	tok, err := creds.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	// A stale token must not clear the current one.
	creds.Invalidate("some-older-token")
	if tok2, _ := creds.Token(ctx); tok2 != tok {
		t.Errorf("Token() after stale Invalidate = %q, want cached %q", tok2, tok)
	}
	if got := refreshes.Load(); got != 1 {
		t.Errorf("refresh count = %d, want 1", got)
	}

	// Invalidating the current token forces a refresh.
	creds.Invalidate(tok)
	tok3, err := creds.Token(ctx)
	if err != nil {
		t.Fatalf("Token() after Invalidate error = %v", err)
	}
	if tok3 != "access-2" {
		t.Errorf("Token() after Invalidate = %q, want %q", tok3, "access-2")
	}
}
