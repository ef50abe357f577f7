package go_wish

import (
	"net/url"

	"github.com/stremovskyy/go-wish/internal/jsonutil"
	"github.com/stremovskyy/go-wish/log"
)

// RunOption controls behavior of a single SDK call.
type RunOption func(*runOptions)

// DryRunHandler receives information about a skipped request.
//
// url carries the API key for GET requests; payload is the form for POST
// requests and nil otherwise.
type DryRunHandler func(method string, url string, payload any)

type runOptions struct {
	dryRun       bool
	dryRunHandle DryRunHandler
}

// DryRun skips the underlying HTTP call.
//
// Optional handler lets you inspect the request. Without one the request is
// logged with the key masked.
func DryRun(handler ...DryRunHandler) RunOption {
	return func(o *runOptions) {
		o.dryRun = true
		if len(handler) > 0 && handler[0] != nil {
			o.dryRunHandle = handler[0]
		}
	}
}

func collectRunOptions(opts []RunOption) *runOptions {
	if len(opts) == 0 {
		return nil
	}

	r := &runOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (o *runOptions) isDryRun() bool {
	return o != nil && o.dryRun
}

func (c *Client) shouldDryRun(runOpts []RunOption, method string, rawURL string, payload url.Values) bool {
	opts := collectRunOptions(runOpts)
	if !opts.isDryRun() {
		return false
	}
	var p any
	if payload != nil {
		p = payload
	}
	if opts.dryRunHandle != nil {
		opts.dryRunHandle(method, rawURL, p)
		return true
	}
	c.logDryRun(method, rawURL, payload)
	return true
}

func (c *Client) logDryRun(method string, rawURL string, payload url.Values) {
	logger := c.logger
	if logger == nil {
		logger = log.NopLogger{}
	}
	logger.Infof("Dry run: skipping request %s %s", method, c.redact(rawURL))
	if payload == nil {
		logger.Infof("Dry run payload: <nil>")
		return
	}
	logger.Infof("Dry run payload:\n%s", c.redact(marshalIndent(payload)))
}

func marshalIndent(v url.Values) string {
	out, err := jsonutil.MarshalIndent(v)
	if err != nil {
		return v.Encode()
	}
	return string(out)
}
