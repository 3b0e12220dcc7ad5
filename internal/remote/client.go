// Package remote implements the HTTP JSON data source: record loading,
// create/update/delete mutations and lookup dataset fetches.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// defaultHTTPClient is used when Config.HTTPClient is nil.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// maxBodyBytes caps every response body read.
const maxBodyBytes = 10 * 1024 * 1024

// idPlaceholder is substituted with the escaped record id in path templates.
const idPlaceholder = "{id}"

// Endpoints are path templates appended to Config.BaseURL.
type Endpoints struct {
	List   string            `mapstructure:"list"`
	Create string            `mapstructure:"create"`
	Update string            `mapstructure:"update"`
	Delete string            `mapstructure:"delete"`
	Lookup map[string]string `mapstructure:"lookup"`
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Endpoints Endpoints
	// Token is sent on every request, as "Authorization: Bearer <token>"
	// or verbatim in AuthHeader when that is set.
	Token      string
	AuthHeader string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to a JSON REST API. It implements types.Source and
// types.LookupFetcher.
type Client struct {
	base   string
	ep     Endpoints
	token  string
	header string
	http   *http.Client
	log    *slog.Logger
}

var (
	_ types.Source        = (*Client)(nil)
	_ types.LookupFetcher = (*Client)(nil)
)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &types.ConfigError{Err: fmt.Errorf("remote base URL must not be empty")}
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, &types.ConfigError{Err: fmt.Errorf("remote base URL: %w", err)}
	}
	ep := cfg.Endpoints
	if ep.Update == "" {
		ep.Update = "/" + idPlaceholder
	}
	if ep.Delete == "" {
		ep.Delete = "/" + idPlaceholder
	}
	c := &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		ep:     ep,
		token:  cfg.Token,
		header: cfg.AuthHeader,
		http:   cfg.HTTPClient,
		log:    cfg.Logger,
	}
	if c.http == nil {
		c.http = defaultHTTPClient
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// Load fetches the record list.
func (c *Client) Load(ctx context.Context) ([]types.Record, error) {
	return c.fetchRecords(ctx, "load", c.base+c.ep.List)
}

// Create posts rec and returns the stored record as echoed by the server,
// or rec itself when the response has no body.
func (c *Client) Create(ctx context.Context, rec types.Record) (types.Record, error) {
	u := c.base + c.ep.Create
	body, err := c.do(ctx, "create", http.MethodPost, u, rec)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return rec, nil
	}
	created, err := decodeRecord(body)
	if err != nil {
		return nil, &types.FetchError{Op: "create", URL: u, Err: err}
	}
	return created, nil
}

// Update puts rec at the update path for id.
func (c *Client) Update(ctx context.Context, id string, rec types.Record) error {
	_, err := c.do(ctx, "update", http.MethodPut, c.withID(c.ep.Update, id), rec)
	return err
}

// Delete removes the record id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.withID(c.ep.Delete, id), nil)
	return err
}

// FetchURL loads a lookup dataset. Relative URLs resolve against the base.
func (c *Client) FetchURL(ctx context.Context, rawURL string) ([]types.Record, error) {
	u := rawURL
	if !strings.Contains(rawURL, "://") {
		u = c.base + "/" + strings.TrimLeft(rawURL, "/")
	}
	return c.fetchRecords(ctx, "lookup", u)
}

// FetchEndpoint loads the named lookup endpoint. Names without a configured
// path map to "/<name>".
func (c *Client) FetchEndpoint(ctx context.Context, name string) ([]types.Record, error) {
	path, ok := c.ep.Lookup[name]
	if !ok {
		path = "/" + url.PathEscape(name)
	}
	return c.fetchRecords(ctx, "lookup", c.base+path)
}

func (c *Client) withID(tmpl, id string) string {
	return c.base + strings.ReplaceAll(tmpl, idPlaceholder, url.PathEscape(id))
}

func (c *Client) fetchRecords(ctx context.Context, op, u string) ([]types.Record, error) {
	body, err := c.do(ctx, op, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(body)
	if err != nil {
		return nil, &types.FetchError{Op: op, URL: u, Err: err}
	}
	return records, nil
}

// do performs one request and returns the body of a 2xx response. Every
// failure is a *types.FetchError.
func (c *Client) do(ctx context.Context, op, method, u string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &types.FetchError{Op: op, URL: u, Err: fmt.Errorf("marshaling request: %w", err)}
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &types.FetchError{Op: op, URL: u, Err: fmt.Errorf("creating HTTP request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	c.log.Debug("remote request", "op", op, "method", method, "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.FetchError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &types.FetchError{Op: op, URL: u, Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.FetchError{Op: op, URL: u, Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(body), 200))}
	}
	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == "" {
		return
	}
	if c.header != "" {
		req.Header.Set(c.header, c.token)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
}

// DecodeRecords accepts a JSON array of objects or an object whose "data"
// member is such an array.
func DecodeRecords(body []byte) ([]types.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, types.ErrUnexpectedResponse
	}
	switch trimmed[0] {
	case '[':
		var records []types.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parsing record list: %w", err)
		}
		return records, nil
	case '{':
		var wrapped struct {
			Data *[]types.Record `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing record envelope: %w", err)
		}
		if wrapped.Data == nil {
			return nil, fmt.Errorf("%w: object without data array", types.ErrUnexpectedResponse)
		}
		return *wrapped.Data, nil
	default:
		return nil, types.ErrUnexpectedResponse
	}
}

func decodeRecord(body []byte) (types.Record, error) {
	var wrapped struct {
		Data types.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}
	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("parsing created record: %w", err)
	}
	return rec, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
