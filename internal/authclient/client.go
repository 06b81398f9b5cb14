// Package authclient asks the auth service who a token belongs to.
package authclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/discovery"
)

// ErrUpstreamUnavailable means the auth service could not give an answer.
var ErrUpstreamUnavailable = apperr.New(apperr.KindUpstreamUnavailable, "auth service unavailable")

// Resolver answers token and identity questions on behalf of resource
// services.
type Resolver interface {
	TokenIsValid(ctx context.Context, token string) (bool, error)
	ResolveIdentityID(ctx context.Context, token string) (string, error)
	IdentityMatches(ctx context.Context, token, candidateID string) (bool, error)
	IdentityExists(ctx context.Context, userID string) (bool, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	locator discovery.Locator
	http    HTTPClient
	service string
}

// New returns a client that finds the auth service through locator under
// the name service.
func New(locator discovery.Locator, httpClient HTTPClient, service string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{locator: locator, http: httpClient, service: service}
}

func (c *Client) TokenIsValid(ctx context.Context, token string) (bool, error) {
	id, err := c.ResolveIdentityID(ctx, token)
	if err != nil {
		return false, err
	}
	return id != "", nil
}

// ResolveIdentityID returns the user id behind token, or "" when the token
// is not live.
func (c *Client) ResolveIdentityID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	status, body, err := c.get(ctx, "/auth/"+url.PathEscape(token))
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		return strings.TrimSpace(body), nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("%w: resolve token: status %d", ErrUpstreamUnavailable, status)
	}
}

func (c *Client) IdentityMatches(ctx context.Context, token, candidateID string) (bool, error) {
	id, err := c.ResolveIdentityID(ctx, token)
	if err != nil {
		return false, err
	}
	return id != "" && id == candidateID, nil
}

func (c *Client) IdentityExists(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	status, _, err := c.get(ctx, "/auth/user/"+url.PathEscape(userID))
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: user lookup: status %d", ErrUpstreamUnavailable, status)
	}
}

func (c *Client) get(ctx context.Context, path string) (int, string, error) {
	base, err := c.locator.Resolve(ctx, c.service)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0, "", fmt.Errorf("%w: read response: %w", ErrUpstreamUnavailable, err)
	}
	return resp.StatusCode, string(b), nil
}
