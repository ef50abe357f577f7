package go_wish

import (
	"context"
	"net/url"

	"github.com/stremovskyy/go-wish/log"
)

// Wish is the main SDK interface.
type Wish interface {
	Products() *ProductService
	Variants() *VariantService
	Orders() *OrderService

	AuthTest(ctx context.Context, runOpts ...RunOption) (*Merchant, error)
	AuthTestJSON(ctx context.Context, runOpts ...RunOption) (*Envelope, error)

	Get(ctx context.Context, endpointPath string, query url.Values, runOpts ...RunOption) (*Envelope, error)
	Post(ctx context.Context, endpointPath string, form url.Values, runOpts ...RunOption) (*Envelope, error)
	BuildURL(endpointPath string, query url.Values) (string, error)

	BaseURL() string
	Sandbox() bool
	SetLogLevel(level log.Level)
}

var _ Wish = (*Client)(nil)
