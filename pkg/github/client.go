// Package github provides a read-only GitHub REST API client for the
// endpoints ghorbit consumes. Only the first page of any collection is
// requested.
//
// The client classifies upstream status codes into the structured errors
// of [pkg/errors] and degrades predictably: an empty repository (204/409)
// is zero items, a denied request (403) surfaces through a throttled
// notification hook, and a malformed body is passed through as raw text
// inside the error rather than raised as a panic. Nothing is retried.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghorbit/pkg/cache"
	"github.com/matzehuels/ghorbit/pkg/errors"
)

// DefaultBaseURL is the public GitHub API root.
const DefaultBaseURL = "https://api.github.com"

// deniedCooldown limits how often the notify hook fires for 403 responses.
const deniedCooldown = 3 * time.Second

// Auth holds request credentials. Token wins when both are set; the
// client_id/client_secret pair is appended as query parameters, matching
// GitHub's legacy application auth.
type Auth struct {
	Token        string
	ClientID     string
	ClientSecret string
}

// Options configures a Client.
type Options struct {
	BaseURL string        // defaults to DefaultBaseURL
	Auth    Auth          //
	Timeout time.Duration // per-request; 0 means no timeout
	Cache   cache.Cache   // nil disables caching
	TTL     time.Duration // cache TTL for successful responses
	Logger  *log.Logger   // nil falls back to log.Default()

	// Notify is invoked for rate-limit/denied responses, at most once per
	// cooldown window. nil disables notification (the denial is still
	// logged and returned as an error).
	Notify func(message string)
}

// Client is a GitHub API client with response caching and status
// classification. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	auth    Auth
	cache   cache.Cache
	ttl     time.Duration
	logger  *log.Logger
	notify  func(string)

	mu         sync.Mutex
	lastDenied time.Time
}

// NewClient creates a Client from Options.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		auth:    opts.Auth,
		cache:   c,
		ttl:     opts.TTL,
		logger:  logger,
		notify:  opts.Notify,
	}
}

// Following lists accounts the user follows (first page).
func (c *Client) Following(ctx context.Context, user string) ([]User, error) {
	var users []User
	err := c.get(ctx, fmt.Sprintf("/users/%s/following", url.PathEscape(user)), &users)
	return users, err
}

// Followers lists accounts following the user (first page).
func (c *Client) Followers(ctx context.Context, user string) ([]User, error) {
	var users []User
	err := c.get(ctx, fmt.Sprintf("/users/%s/followers", url.PathEscape(user)), &users)
	return users, err
}

// Orgs lists the user's public organization memberships (first page).
func (c *Client) Orgs(ctx context.Context, user string) ([]Org, error) {
	var orgs []Org
	err := c.get(ctx, fmt.Sprintf("/users/%s/orgs", url.PathEscape(user)), &orgs)
	return orgs, err
}

// OrgMembers lists an organization's public members (first page).
func (c *Client) OrgMembers(ctx context.Context, org string) ([]User, error) {
	var users []User
	err := c.get(ctx, fmt.Sprintf("/orgs/%s/members", url.PathEscape(org)), &users)
	return users, err
}

// Repos lists the user's repositories, including forks and org repos the
// user has access to (first page).
func (c *Client) Repos(ctx context.Context, user string) ([]Repo, error) {
	var repos []Repo
	err := c.get(ctx, fmt.Sprintf("/users/%s/repos?type=all", url.PathEscape(user)), &repos)
	return repos, err
}

// Contributors lists accounts that have landed commits in the repository
// (first page).
func (c *Client) Contributors(ctx context.Context, owner, repo string) ([]User, error) {
	if err := errors.ValidateRepoName(repo); err != nil {
		return nil, err
	}
	var users []User
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contributors", url.PathEscape(owner), url.PathEscape(repo)), &users)
	return users, err
}

// Collaborators lists accounts with commit access to the repository
// (first page). Requires push access on the token for private data; for
// ghorbit's purposes it is only called for forks.
func (c *Client) Collaborators(ctx context.Context, owner, repo string) ([]User, error) {
	if err := errors.ValidateRepoName(repo); err != nil {
		return nil, err
	}
	var users []User
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/collaborators", url.PathEscape(owner), url.PathEscape(repo)), &users)
	return users, err
}

// ContributorStats returns weekly commit statistics for every contributor
// to the repository. GitHub computes these asynchronously: a 202 response
// means the numbers are still being crunched and maps to ErrCodeNotReady.
func (c *Client) ContributorStats(ctx context.Context, owner, repo string) ([]ContributorStats, error) {
	if err := errors.ValidateRepoName(repo); err != nil {
		return nil, err
	}
	var stats []ContributorStats
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/stats/contributors", url.PathEscape(owner), url.PathEscape(repo)), &stats)
	return stats, err
}

// SearchUsers queries the user search endpoint, returning up to perPage
// matches.
func (c *Client) SearchUsers(ctx context.Context, query string, perPage int) ([]User, error) {
	if perPage <= 0 {
		perPage = 10
	}
	var resp userSearchResponse
	err := c.get(ctx, fmt.Sprintf("/search/users?per_page=%d&q=%s", perPage, url.QueryEscape(query)), &resp)
	return resp.Items, err
}

// get performs a GET against path, consulting the cache first and storing
// the raw body of successful responses.
func (c *Client) get(ctx context.Context, path string, v any) error {
	key := cache.Key("github", path)
	if data, hit, _ := c.cache.Get(ctx, key); hit {
		return json.Unmarshal(data, v)
	}

	body, err := c.doRequest(ctx, path)
	if err != nil {
		return err
	}
	if body == nil {
		// Empty-repo responses carry no body; leave v zero-valued.
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, err, "malformed response body: %s", truncate(string(body), 200))
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	return nil
}

// doRequest sends the request and classifies the response. A nil body with
// a nil error means a definitive empty result (204/409).
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	reqURL := c.requestURL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.auth.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "request %s timed out", path)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "request %s failed", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read response from %s", path)
	}

	return c.classify(path, resp.StatusCode, body)
}

// classify maps upstream status codes onto the error taxonomy.
func (c *Client) classify(path string, status int, body []byte) ([]byte, error) {
	switch {
	case status == http.StatusOK:
		return body, nil

	case status == http.StatusAccepted:
		// GitHub is computing the result asynchronously (typical for
		// stats endpoints) and could not answer immediately.
		c.logger.Info("request accepted but not ready", "path", path)
		return nil, errors.New(errors.ErrCodeNotReady, "GitHub is still processing %s", path)

	case status == http.StatusNoContent || status == http.StatusConflict:
		// Repo is empty (204) or still being created (409).
		c.logger.Info("empty repository response", "path", path, "status", status)
		return nil, nil

	case status == http.StatusForbidden:
		// For our read-only uses, 403 means rate limiting or denied
		// credentials.
		msg := deniedMessage(body)
		c.logger.Error("request denied", "path", path, "message", msg)
		c.notifyDenied(msg)
		return nil, &errors.RateLimitedError{Message: msg}

	case status == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "resource not found: %s", path)

	case status > 499:
		c.logger.Error("server error", "path", path, "status", status)
		return nil, errors.New(errors.ErrCodeServer, "request %s failed with status %d", path, status)

	default:
		return nil, errors.New(errors.ErrCodeNetwork, "unable to load %s (status %d)", path, status)
	}
}

// notifyDenied fires the notify hook, dropping calls inside the cooldown
// window so a burst of denied requests surfaces as one alert.
func (c *Client) notifyDenied(msg string) {
	if c.notify == nil {
		return
	}
	c.mu.Lock()
	now := time.Now()
	if now.Sub(c.lastDenied) <= deniedCooldown {
		c.mu.Unlock()
		return
	}
	c.lastDenied = now
	c.mu.Unlock()

	c.notify(msg)
}

// requestURL joins the base URL, path, and app credentials.
func (c *Client) requestURL(path string) string {
	u := c.baseURL + path
	if c.auth.Token != "" || c.auth.ClientID == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "client_id=" + url.QueryEscape(c.auth.ClientID) +
		"&client_secret=" + url.QueryEscape(c.auth.ClientSecret)
}

func deniedMessage(body []byte) string {
	var m apiMessage
	if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return truncate(string(body), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
