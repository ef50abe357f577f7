package go_wish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/stremovskyy/go-wish/consts"
	"github.com/stremovskyy/go-wish/format"
	"github.com/stremovskyy/go-wish/internal/httpclient"
	"github.com/stremovskyy/go-wish/log"
	"github.com/stremovskyy/recorder"
)

// Client is the Wish merchant API client.
//
// Every call is independent: the client holds only its immutable configuration
// and is safe for concurrent use. Calls are never retried.
type Client struct {
	cfg     config
	baseURL string
	logger  log.Logger
	http    *httpclient.Client

	products *ProductService
	variants *VariantService
	orders   *OrderService
}

func NewClient(opts ...Option) (Wish, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = consts.ProductionBaseURL
		if cfg.sandbox {
			baseURL = consts.SandboxBaseURL
		}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	c := &Client{cfg: cfg, baseURL: baseURL}
	c.logger = log.Named(cfg.logger, "merchant")
	c.http = httpclient.New(httpclient.Config{
		HTTPClient: cfg.httpClient,
		Timeout:    cfg.timeout,
		Logger:     c.logger,
		LogBodies:  cfg.logBodies,
		Recorder:   cfg.recorder,
		Redact:     c.redact,
	})

	c.products = &ProductService{c: c}
	c.variants = &VariantService{c: c}
	c.orders = &OrderService{c: c}
	return c, nil
}

// NewDefaultClient is a convenience wrapper around NewClient() with only the key set.
func NewDefaultClient(key string) (Wish, error) {
	return NewClient(WithKey(key))
}

// NewClientWithRecorder attaches rec before applying opts.
func NewClientWithRecorder(rec recorder.Recorder, opts ...Option) (Wish, error) {
	opts = append([]Option{WithRecorder(rec)}, opts...)
	return NewClient(opts...)
}

func (c *Client) Products() *ProductService { return c.products }
func (c *Client) Variants() *VariantService { return c.variants }
func (c *Client) Orders() *OrderService     { return c.orders }

// BaseURL returns the versioned API root selected at construction.
func (c *Client) BaseURL() string { return c.baseURL }

// Sandbox reports whether the client was built for the sandbox host.
func (c *Client) Sandbox() bool { return c.cfg.sandbox }

// SetLogLevel updates SDK log level when current logger supports it.
func (c *Client) SetLogLevel(level log.Level) {
	if c == nil || c.logger == nil {
		return
	}
	if l, ok := c.logger.(interface{ SetLevel(log.Level) }); ok {
		l.SetLevel(level)
	}
}

// BuildURL returns base URL + p with query and the configured key.
//
// Query already present on the base URL is kept. A "key" in query is ignored:
// the configured key always wins.
func (c *Client) BuildURL(p string, query url.Values) (string, error) {
	return c.buildURL(p, query, true)
}

func (c *Client) buildURL(p string, query url.Values, withKey bool) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.baseURL, err)
	}
	u.Path = path.Join(u.Path, p)

	q := u.Query()
	for k, vs := range query {
		if k == consts.ParamKey {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if withKey {
		q.Set(consts.ParamKey, c.cfg.key)
	} else {
		q.Del(consts.ParamKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) ensureKey() error {
	if c.cfg.key == "" {
		return &ParamError{Param: consts.ParamKey, Err: ErrMissingKey}
	}
	return nil
}

// redact masks the API key in s.
func (c *Client) redact(s string) string {
	key := c.cfg.key
	if key == "" {
		return s
	}
	if escaped := url.QueryEscape(key); escaped != key {
		s = strings.ReplaceAll(s, escaped, "***")
	}
	return strings.ReplaceAll(s, key, "***")
}

// Get performs an authenticated GET against the API. The key is sent in the query string.
func (c *Client) Get(ctx context.Context, endpointPath string, query url.Values, runOpts ...RunOption) (*Envelope, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	if err := c.ensureKey(); err != nil {
		return nil, err
	}
	full, err := c.buildURL(endpointPath, query, true)
	if err != nil {
		return nil, err
	}
	if c.shouldDryRun(runOpts, http.MethodGet, full, nil) {
		return nil, nil
	}
	return handleResponse(c.http.Do(ctx, http.MethodGet, full, nil))
}

// Post performs an authenticated POST against the API. The key is sent in
// the form body, never in the URL.
func (c *Client) Post(ctx context.Context, endpointPath string, form url.Values, runOpts ...RunOption) (*Envelope, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	if err := c.ensureKey(); err != nil {
		return nil, err
	}
	full, err := c.buildURL(endpointPath, nil, false)
	if err != nil {
		return nil, err
	}
	body := make(url.Values, len(form)+1)
	for k, vs := range form {
		body[k] = append([]string(nil), vs...)
	}
	body.Set(consts.ParamKey, c.cfg.key)

	if c.shouldDryRun(runOpts, http.MethodPost, full, body) {
		return nil, nil
	}
	return handleResponse(c.http.Do(ctx, http.MethodPost, full, body))
}

// AuthTestJSON checks the configured key and returns the raw envelope.
func (c *Client) AuthTestJSON(ctx context.Context, runOpts ...RunOption) (*Envelope, error) {
	return c.Get(ctx, consts.AuthTestPath, nil, runOpts...)
}

// AuthTest checks the configured key and returns the merchant it belongs to.
func (c *Client) AuthTest(ctx context.Context, runOpts ...RunOption) (*Merchant, error) {
	env, err := c.AuthTestJSON(ctx, runOpts...)
	if err != nil || env == nil {
		return nil, err
	}
	data, err := env.DecodeData()
	if err != nil {
		return nil, &ServerError{Body: env.Raw, Err: err}
	}
	rec, _ := format.Format(data).(format.Record)
	return newMerchant(rec), nil
}

// Page selects a window of a multi-get listing.
//
// A nil *Page means the first page. Limit <= 0 falls back to the default.
type Page struct {
	Start int
	Limit int
}

func (p *Page) values() url.Values {
	start, limit := consts.DefaultPageStart, consts.DefaultPageLimit
	if p != nil {
		if p.Start > 0 {
			start = p.Start
		}
		if p.Limit > 0 {
			limit = p.Limit
		}
	}
	return url.Values{
		consts.ParamStart: {strconv.Itoa(start)},
		consts.ParamLimit: {strconv.Itoa(limit)},
	}
}

func requireParam(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ParamError{Param: name, Message: "is empty"}
	}
	return nil
}

// formatRecord decodes and normalizes a single-record envelope.
func formatRecord(env *Envelope) (format.Record, error) {
	if env == nil {
		return nil, nil
	}
	data, err := env.DecodeData()
	if err != nil {
		return nil, &ServerError{Body: env.Raw, Err: err}
	}
	rec, ok := format.Format(data).(format.Record)
	if !ok {
		return nil, &ServerError{Body: env.Raw, Err: fmt.Errorf("data is %T, not an object", data)}
	}
	return rec, nil
}

// formatRecords decodes and normalizes a list envelope.
func formatRecords(env *Envelope) ([]format.Record, error) {
	if env == nil {
		return nil, nil
	}
	data, err := env.DecodeData()
	if err != nil {
		return nil, &ServerError{Body: env.Raw, Err: err}
	}
	recs, err := format.Records(format.Format(data))
	if err != nil {
		return nil, &ServerError{Body: env.Raw, Err: err}
	}
	return recs, nil
}
