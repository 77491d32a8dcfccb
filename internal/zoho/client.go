// Package zoho implements an authenticated read-only client for the Zoho
// Sprints REST API, together with the OAuth credential store that backs it.
package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenProvider supplies valid access tokens for API calls and accepts
// invalidation of tokens the upstream has rejected.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(accessToken string)
}

// Client is an authenticated Zoho Sprints API client.
// All operations are HTTP GETs against the team-scoped base URL.
type Client struct {
	baseURL    string
	creds      TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the team-scoped Sprints API root,
	// e.g. https://sprintsapi.zoho.com/zsapi/team/<team_id>.
	BaseURL string
	Creds   TokenProvider
	// HTTPClient executes API requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a Zoho Sprints API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Creds == nil {
		return nil, fmt.Errorf("credential store is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		creds:      cfg.Creds,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Projects returns all projects for the team.
func (c *Client) Projects(ctx context.Context) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("action", "allprojects")
	q.Set("index", "1")
	q.Set("range", "50")
	return c.get(ctx, "projects/", q)
}

// Project returns the details of a single project.
func (c *Client) Project(ctx context.Context, projectID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("action", "details")
	return c.get(ctx, fmt.Sprintf("projects/%s/", url.PathEscape(projectID)), q)
}

// Sprints returns the sprints of a project.
func (c *Client) Sprints(ctx context.Context, projectID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("action", "data")
	q.Set("index", "1")
	q.Set("range", "100")
	q.Set("type", "[2]")
	return c.get(ctx, fmt.Sprintf("projects/%s/sprints/", url.PathEscape(projectID)), q)
}

// Sprint returns the details of a single sprint.
func (c *Client) Sprint(ctx context.Context, projectID, sprintID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("action", "details")
	return c.get(ctx, fmt.Sprintf("projects/%s/sprints/%s/",
		url.PathEscape(projectID), url.PathEscape(sprintID)), q)
}

// Items returns the work items of a sprint or backlog.
// Backlogs are addressed through the sprints path with the backlog id.
func (c *Client) Items(ctx context.Context, projectID, sprintOrBacklogID string) (List, error) {
	body, err := c.get(ctx, fmt.Sprintf("projects/%s/sprints/%s/items",
		url.PathEscape(projectID), url.PathEscape(sprintOrBacklogID)), nil)
	if err != nil {
		return List{}, err
	}
	return extractList(body, "items"), nil
}

// Item returns a single work item.
func (c *Client) Item(ctx context.Context, projectID, sprintOrBacklogID, itemID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("projects/%s/sprints/%s/items/%s",
		url.PathEscape(projectID), url.PathEscape(sprintOrBacklogID), url.PathEscape(itemID)), nil)
}

// Epics returns the epics of a project.
func (c *Client) Epics(ctx context.Context, projectID string) (List, error) {
	body, err := c.get(ctx, fmt.Sprintf("projects/%s/epics", url.PathEscape(projectID)), nil)
	if err != nil {
		return List{}, err
	}
	return extractList(body, "epics"), nil
}

// Epic returns a single epic.
func (c *Client) Epic(ctx context.Context, projectID, epicID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("projects/%s/epics/%s",
		url.PathEscape(projectID), url.PathEscape(epicID)), nil)
}

// Users returns the users of a project.
func (c *Client) Users(ctx context.Context, projectID string) (List, error) {
	body, err := c.get(ctx, fmt.Sprintf("projects/%s/users", url.PathEscape(projectID)), nil)
	if err != nil {
		return List{}, err
	}
	return extractList(body, "users"), nil
}

// User returns a single user. User details are team-level, not
// project-scoped.
func (c *Client) User(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("users/%s", url.PathEscape(userID)), nil)
}

// Releases returns the releases of a project.
func (c *Client) Releases(ctx context.Context, projectID string) (List, error) {
	body, err := c.get(ctx, fmt.Sprintf("projects/%s/releases", url.PathEscape(projectID)), nil)
	if err != nil {
		return List{}, err
	}
	return extractList(body, "releases"), nil
}

// Release returns a single release.
func (c *Client) Release(ctx context.Context, projectID, releaseID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("projects/%s/releases/%s",
		url.PathEscape(projectID), url.PathEscape(releaseID)), nil)
}

// get issues an authenticated GET against the Sprints API.
//
// On 401 the cached token is invalidated, refreshed once, and the request
// retried. A second 401 is a fatal *AuthError. Other non-2xx statuses
// return *APIError with the status and body passed through; network
// failures return *TransportError. No automatic retry otherwise.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	tok, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, path, query, tok)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Debug("access token rejected, refreshing", "path", path)
		c.creds.Invalidate(tok)

		tok, err = c.creds.Token(ctx)
		if err != nil {
			return nil, err
		}
		body, status, err = c.do(ctx, path, query, tok)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, &AuthError{StatusCode: status, Message: string(body)}
		}
	}

	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: string(body)}
	}

	return body, nil
}

// do performs a single GET attempt and reads the full response body.
func (c *Client) do(ctx context.Context, path string, query url.Values, token string) ([]byte, int, error) {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: path, Err: err}
	}

	c.logger.Debug("zoho API request",
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return body, resp.StatusCode, nil
}
