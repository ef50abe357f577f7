package go_wish

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stremovskyy/go-wish/consts"
	"github.com/stremovskyy/go-wish/log"
	"github.com/stremovskyy/recorder"
)

type Option func(*config) error

type config struct {
	key     string
	sandbox bool
	baseURL string
	timeout time.Duration

	httpClient *http.Client
	logger     log.Logger
	logBodies  bool
	recorder   recorder.Recorder
}

func defaultConfig() config {
	return config{
		timeout: consts.DefaultTimeout,
		logger:  log.NewDefault(),
	}
}

// WithKey sets the merchant API key sent with every request.
func WithKey(key string) Option {
	return func(cfg *config) error {
		cfg.key = strings.TrimSpace(key)
		return nil
	}
}

// WithSandbox switches the client to the sandbox host.
func WithSandbox(sandbox bool) Option {
	return func(cfg *config) error {
		cfg.sandbox = sandbox
		return nil
	}
}

// WithBaseURL overrides the host selected by WithSandbox.
func WithBaseURL(baseURL string) Option {
	return func(cfg *config) error {
		if baseURL == "" {
			return errors.New("base url is empty")
		}
		cfg.baseURL = baseURL
		return nil
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) error {
		if timeout <= 0 {
			return errors.New("timeout must be > 0")
		}
		cfg.timeout = timeout
		return nil
	}
}

// WithHTTPClient sets a custom *http.Client. Its Timeout is replaced by the
// configured timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		if client == nil {
			return errors.New("http client is nil")
		}
		cfg.httpClient = client
		return nil
	}
}

func WithLogger(logger log.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			cfg.logger = log.NopLogger{}
			return nil
		}
		cfg.logger = logger
		return nil
	}
}

// WithLogHTTPBodies enables verbose request/response body logging for debugging.
//
// Disabled by default because bodies may contain merchant data.
func WithLogHTTPBodies(enabled bool) Option {
	return func(cfg *config) error {
		cfg.logBodies = enabled
		return nil
	}
}

// WithRecorder attaches a recorder that receives every request, response and error.
func WithRecorder(r recorder.Recorder) Option {
	return func(cfg *config) error {
		cfg.recorder = r
		return nil
	}
}
