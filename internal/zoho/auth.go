package zoho

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew is subtracted from the token expiry so a token is refreshed
// shortly before the provider would reject it.
const expirySkew = 60 * time.Second

// Credentials holds the OAuth client credentials and the current token
// pair, refreshing the access token on expiry via the refresh-token grant.
//
// Concurrent refreshes are serialized: the mutex is held across the
// provider call, so at most one refresh is in flight and every waiting
// caller observes its result instead of issuing a duplicate exchange.
type Credentials struct {
	conf         *oauth2.Config
	refreshToken string
	httpClient   *http.Client
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// CredentialsConfig configures a credential store.
type CredentialsConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL is the OAuth token endpoint.
	TokenURL string
	// Scopes are the OAuth scopes the refresh token was granted with.
	// The provider enforces them server-side; they are recorded here so
	// misconfiguration shows up in one place.
	Scopes []string
	// HTTPClient executes the token exchange. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewCredentials creates a credential store.
func NewCredentials(cfg CredentialsConfig) (*Credentials, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("token URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Credentials{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.TokenURL,
				// Zoho expects client credentials in the request body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.RefreshToken,
		httpClient:   httpClient,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Token returns a valid access token, refreshing it first if the cached
// one is missing or expired. Refresh failures surface as *AuthError and
// are not retried.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.token.AccessToken, nil
	}

	tok, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}
	c.token = tok

	c.logger.Debug("access token refreshed", "expires", tok.Expiry)
	return tok.AccessToken, nil
}

// Invalidate drops the cached access token if it still matches the given
// one. The compare-and-clear keeps a token obtained by a concurrent
// refresh from being discarded.
func (c *Credentials) Invalidate(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken == accessToken {
		c.token = nil
	}
}

// valid reports whether the cached token can still be used.
// Callers must hold c.mu.
func (c *Credentials) valid() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return c.now().Before(c.token.Expiry.Add(-expirySkew))
}

// refresh exchanges the refresh token for a new access token.
// Callers must hold c.mu.
func (c *Credentials) refresh(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	ts := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})
	tok, err := ts.Token()
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			status := 0
			if rErr.Response != nil {
				status = rErr.Response.StatusCode
			}
			return nil, &AuthError{
				StatusCode: status,
				Message:    string(rErr.Body),
				Err:        err,
			}
		}
		return nil, &AuthError{Message: "token endpoint unreachable", Err: err}
	}

	return tok, nil
}
