package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/stremovskyy/go-wish/consts"
	"github.com/stremovskyy/go-wish/log"
	"github.com/stremovskyy/recorder"
)

// Config holds everything the transport needs.
type Config struct {
	// HTTPClient is the underlying transport. A fresh client is used when nil.
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     log.Logger
	LogBodies  bool
	Recorder   recorder.Recorder
	// Redact is applied to URLs and bodies before they are logged or recorded.
	Redact func(string) string
}

// Client is a small resty wrapper that records and logs every call.
// It does not retry: a failed call is returned to the caller as is.
type Client struct {
	rc        *resty.Client
	logger    log.Logger
	logBodies bool
	recorder  recorder.Recorder
	redact    func(string) string
}

// Response is what came back from the server.
type Response struct {
	RequestID  string
	StatusCode int
	Body       []byte
}

// New creates an internal HTTP client.
func New(cfg Config) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		// resty writes Timeout and Transport into the client it wraps.
		hc := *cfg.HTTPClient
		rc = resty.NewWithClient(&hc)
	} else {
		rc = resty.New()
		// Calls share no cookies.
		rc.SetCookieJar(nil)
	}
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NopLogger{}
	}
	rc.SetLogger(logger)
	rc.SetHeader(consts.HeaderAccept, consts.ContentTypeJSON)

	redact := cfg.Redact
	if redact == nil {
		redact = func(s string) string { return s }
	}
	return &Client{
		rc:        rc,
		logger:    logger,
		logBodies: cfg.LogBodies,
		recorder:  cfg.Recorder,
		redact:    redact,
	}
}

// Do sends a request to rawURL. A non-empty form is sent url-encoded in the body.
//
// Transport failures are returned as errors with a nil Response. A non-2xx
// status returns the Response together with an *HTTPStatusError.
func (c *Client) Do(ctx context.Context, method, rawURL string, form url.Values) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID := nextRequestID()
	logURL := c.redact(rawURL)

	req := c.rc.R().
		SetContext(ctx).
		SetHeader(consts.HeaderRequestID, requestID)

	var payload []byte
	if len(form) > 0 {
		req.SetFormDataFromValues(form)
		payload = []byte(c.redact(form.Encode()))
	}

	c.logger.Debugf("[WishAPI HTTP] request: request_id=%s method=%s url=%s payload=%s", requestID, method, logURL, logBody(payload, c.logBodies))
	c.recordRequest(ctx, requestID, method, logURL, payload)

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		c.logger.Errorf("[WishAPI HTTP] request failed: request_id=%s method=%s url=%s err=%v", requestID, method, logURL, err)
		c.recordError(ctx, requestID, err)
		return nil, err
	}

	out := &Response{RequestID: requestID, StatusCode: resp.StatusCode(), Body: resp.Body()}
	c.recordResponse(ctx, requestID, out.Body)
	c.logger.Debugf("[WishAPI HTTP] response: request_id=%s method=%s url=%s status=%d response=%s", requestID, method, logURL, out.StatusCode, logBody(out.Body, c.logBodies))

	if out.StatusCode < 200 || out.StatusCode >= 300 {
		statusErr := &HTTPStatusError{StatusCode: out.StatusCode, Body: out.Body}
		c.logger.Errorf("[WishAPI HTTP] unexpected status: request_id=%s method=%s url=%s status=%d", requestID, method, logURL, out.StatusCode)
		c.recordError(ctx, requestID, statusErr)
		return out, statusErr
	}
	return out, nil
}

// HTTPStatusError indicates a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "http status error"
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	// Limit in error string.
	b := e.Body
	if len(b) > 512 {
		b = b[:512]
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, string(b))
}

func nextRequestID() string {
	return uuid.NewString()
}

func (c *Client) recordRequest(ctx context.Context, requestID, method, logURL string, body []byte) {
	if c == nil || c.recorder == nil {
		return
	}
	tags := map[string]string{"method": method, "url": logURL}
	if err := c.recorder.RecordRequest(ctx, nil, requestID, body, tags); err != nil {
		c.logger.Warnf("[WishAPI HTTP] cannot record request: %v", err)
	}
}

func (c *Client) recordResponse(ctx context.Context, requestID string, body []byte) {
	if c == nil || c.recorder == nil {
		return
	}
	if err := c.recorder.RecordResponse(ctx, nil, requestID, body, nil); err != nil {
		c.logger.Warnf("[WishAPI HTTP] cannot record response: %v", err)
	}
}

func (c *Client) recordError(ctx context.Context, requestID string, err error) {
	if c == nil || c.recorder == nil || err == nil {
		return
	}
	if recErr := c.recorder.RecordError(ctx, nil, requestID, err, nil); recErr != nil {
		c.logger.Warnf("[WishAPI HTTP] cannot record error: %v", recErr)
	}
}

func summarizeBytes(b []byte) string {
	return fmt.Sprintf("size=%d bytes", len(b))
}

func logBody(b []byte, verbose bool) string {
	if !verbose {
		return summarizeBytes(b)
	}

	if pretty, ok := prettyJSONPreview(b); ok {
		return pretty
	}
	return previewBytes(b)
}

func prettyJSONPreview(b []byte) (string, bool) {
	if len(b) == 0 || !json.Valid(b) {
		return "", false
	}

	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return "", false
	}
	return truncate(out.String(), 4096), true
}

func previewBytes(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "<empty>"
	}
	if !utf8.ValidString(s) {
		return fmt.Sprintf("<binary size=%d bytes>", len(b))
	}
	return truncate(s, 4096)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
