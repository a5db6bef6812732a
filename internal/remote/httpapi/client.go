// Package httpapi implements the remote providers over the platform's JSON
// HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/remote"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	AppID      int64
	Version    string // API version sent as "v"; defaults to remote.DefaultAPIVersion
	UserScope  string // scope of the user credential used for listing; defaults to "groups"
	HTTPClient *http.Client
	Logger     logger.Logger

	// ListRetries and ListRetryDelay control the retry of ListTargets.
	ListRetries    uint64
	ListRetryDelay time.Duration
}

// Client talks to the platform API. It implements remote.AuthProvider,
// remote.ConfigurationProvider and remote.TargetLister.
type Client struct {
	base    *url.URL
	appID   int64
	version string
	scope   string
	http    *http.Client
	log     logger.Logger

	listRetries    uint64
	listRetryDelay time.Duration
}

var (
	_ remote.AuthProvider          = (*Client)(nil)
	_ remote.ConfigurationProvider = (*Client)(nil)
	_ remote.TargetLister          = (*Client)(nil)
)

// New creates a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must start with http:// or https://", opts.BaseURL)
	}

	c := &Client{
		base:           base,
		appID:          opts.AppID,
		version:        opts.Version,
		scope:          opts.UserScope,
		http:           opts.HTTPClient,
		log:            opts.Logger,
		listRetries:    opts.ListRetries,
		listRetryDelay: opts.ListRetryDelay,
	}
	if c.version == "" {
		c.version = remote.DefaultAPIVersion
	}
	if c.scope == "" {
		c.scope = "groups"
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = logger.Noop()
	}
	if c.listRetryDelay <= 0 {
		c.listRetryDelay = 350 * time.Millisecond
	}
	if opts.ListRetries == 0 {
		c.listRetries = 1
	}
	return c, nil
}

// envelope is every response shape the API uses.
type envelope struct {
	AccessToken string           `json:"access_token,omitempty"`
	GroupID     int64            `json:"group_id,omitempty"`
	Response    json.RawMessage  `json:"response,omitempty"`
	Error       *remote.APIError `json:"error,omitempty"`
}

// ScopedCredential requests a community credential for targetID.
func (c *Client) ScopedCredential(ctx context.Context, targetID int64, scope string) (string, error) {
	var env envelope
	err := c.postJSON(ctx, "/auth/community_token", map[string]interface{}{
		"app_id":   c.appID,
		"group_id": targetID,
		"scope":    scope,
	}, &env)
	if err != nil {
		return "", err
	}
	if env.AccessToken == "" {
		return "", fmt.Errorf("community token: no credential in response")
	}
	return env.AccessToken, nil
}

// Provision installs the app for targetID and returns the confirmed id.
func (c *Client) Provision(ctx context.Context, targetID int64) (int64, error) {
	var env envelope
	err := c.postJSON(ctx, "/apps/add_to_community", map[string]interface{}{
		"group_id": targetID,
	}, &env)
	if err != nil {
		return 0, err
	}
	if env.GroupID <= 0 {
		return 0, fmt.Errorf("installation was cancelled or did not finish: %w", remote.ErrDenied)
	}
	return env.GroupID, nil
}

// ApplyPrimaryConfig enables messages and bot capabilities.
func (c *Client) ApplyPrimaryConfig(ctx context.Context, targetID int64, credential string) error {
	return c.call(ctx, "groups.setSettings", credential, url.Values{
		"group_id":          {strconv.FormatInt(targetID, 10)},
		"messages":          {"1"},
		"bots_capabilities": {"1"},
	}, nil)
}

// ApplySecondaryConfig enables long-poll delivery of message events.
func (c *Client) ApplySecondaryConfig(ctx context.Context, targetID int64, credential string) error {
	return c.call(ctx, "groups.setLongPollSettings", credential, url.Values{
		"group_id":      {strconv.FormatInt(targetID, 10)},
		"enabled":       {"1"},
		"api_version":   {c.version},
		"message_new":   {"1"},
		"message_allow": {"1"},
		"message_deny":  {"1"},
	}, nil)
}

type groupItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Photo100 string `json:"photo_100"`
	Photo50  string `json:"photo_50"`
}

// ListTargets returns the communities the user administers. A failed attempt
// is retried after ListRetryDelay; a denial is not retried.
func (c *Client) ListTargets(ctx context.Context) ([]remote.Target, error) {
	var targets []remote.Target

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.listRetryDelay), c.listRetries),
		ctx,
	)
	err := backoff.RetryNotify(func() error {
		out, err := c.listOnce(ctx)
		if err != nil {
			if errors.Is(err, remote.ErrDenied) {
				return backoff.Permanent(err)
			}
			return err
		}
		targets = out
		return nil
	}, b, func(err error, wait time.Duration) {
		c.log.Debug("listing targets failed, retrying in %s: %v", wait, err)
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (c *Client) listOnce(ctx context.Context) ([]remote.Target, error) {
	var tok envelope
	if err := c.postJSON(ctx, "/auth/user_token", map[string]interface{}{
		"app_id": c.appID,
		"scope":  c.scope,
	}, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("user token: no credential in response")
	}

	var resp struct {
		Count int         `json:"count"`
		Items []groupItem `json:"items"`
	}
	err := c.call(ctx, "groups.get", tok.AccessToken, url.Values{
		"filter":   {"admin"},
		"extended": {"1"},
		"count":    {"200"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	targets := make([]remote.Target, 0, len(resp.Items))
	for _, g := range resp.Items {
		photo := g.Photo100
		if photo == "" {
			photo = g.Photo50
		}
		targets = append(targets, remote.Target{ID: g.ID, Name: g.Name, Photo: photo})
	}
	return targets, nil
}

// call invokes an API method. out, when non-nil, receives the "response" field.
func (c *Client) call(ctx context.Context, method, credential string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", credential)
	if params.Get("v") == "" {
		params.Set("v", c.version)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/method/"+method), strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var env envelope
	if err := c.do(req, method, &env); err != nil {
		return err
	}
	if env.Response == nil {
		return fmt.Errorf("%s: empty response", method)
	}
	if out != nil {
		if err := json.Unmarshal(env.Response, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", method, err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out *envelope) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, strings.TrimPrefix(path, "/"), out)
}

func (c *Client) do(req *http.Request, op string, out *envelope) error {
	c.log.Debug("%s %s", req.Method, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, remote.ErrTimeout)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s: HTTP %d", op, resp.StatusCode)
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if out.Error != nil {
		out.Error.Method = op
		c.log.Debug("%s failed: %v", op, out.Error)
		return out.Error
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: HTTP %d", op, resp.StatusCode)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}
