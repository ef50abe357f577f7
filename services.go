package go_wish

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/stremovskyy/go-wish/consts"
	"github.com/stremovskyy/go-wish/format"
)

// =========================
// Products
// =========================

type ProductService struct{ c *Client }

// GetJSON returns the raw envelope for a single product.
func (s *ProductService) GetJSON(ctx context.Context, id string, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	if err := requireParam(consts.ParamID, id); err != nil {
		return nil, err
	}
	return s.c.Get(ctx, consts.ProductPath, url.Values{consts.ParamID: {id}}, runOpts...)
}

// Get returns a single formatted product.
func (s *ProductService) Get(ctx context.Context, id string, runOpts ...RunOption) (format.Record, error) {
	env, err := s.GetJSON(ctx, id, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecord(env)
}

// ListJSON returns the raw envelope for a page of products.
func (s *ProductService) ListJSON(ctx context.Context, page *Page, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	return s.c.Get(ctx, consts.ProductMultiGetPath, page.values(), runOpts...)
}

// List returns a page of formatted products.
func (s *ProductService) List(ctx context.Context, page *Page, runOpts ...RunOption) ([]format.Record, error) {
	env, err := s.ListJSON(ctx, page, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecords(env)
}

// =========================
// Variants
// =========================

type VariantService struct{ c *Client }

// GetJSON returns the raw envelope for a single variant.
func (s *VariantService) GetJSON(ctx context.Context, sku string, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	if err := requireParam(consts.ParamSKU, sku); err != nil {
		return nil, err
	}
	return s.c.Get(ctx, consts.VariantPath, url.Values{consts.ParamSKU: {sku}}, runOpts...)
}

// Get returns a single formatted variant.
func (s *VariantService) Get(ctx context.Context, sku string, runOpts ...RunOption) (format.Record, error) {
	env, err := s.GetJSON(ctx, sku, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecord(env)
}

// ListJSON returns the raw envelope for a page of variants.
func (s *VariantService) ListJSON(ctx context.Context, page *Page, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	return s.c.Get(ctx, consts.VariantMultiGetPath, page.values(), runOpts...)
}

// List returns a page of formatted variants.
func (s *VariantService) List(ctx context.Context, page *Page, runOpts ...RunOption) ([]format.Record, error) {
	env, err := s.ListJSON(ctx, page, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecords(env)
}

// UpdateInventory sets the inventory of a variant.
func (s *VariantService) UpdateInventory(ctx context.Context, sku string, inventory int, runOpts ...RunOption) error {
	if s == nil || s.c == nil {
		return errors.New("client is nil")
	}
	if err := requireParam(consts.ParamSKU, sku); err != nil {
		return err
	}
	if inventory < 0 {
		return &ParamError{Param: consts.ParamInventory, Message: "must be >= 0"}
	}
	form := url.Values{
		consts.ParamSKU:       {sku},
		consts.ParamInventory: {strconv.Itoa(inventory)},
	}
	_, err := s.c.Post(ctx, consts.VariantUpdateInventoryPath, form, runOpts...)
	return err
}

// =========================
// Orders
// =========================

type OrderService struct{ c *Client }

// GetJSON returns the raw envelope for a single order.
func (s *OrderService) GetJSON(ctx context.Context, id string, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	if err := requireParam(consts.ParamID, id); err != nil {
		return nil, err
	}
	return s.c.Get(ctx, consts.OrderPath, url.Values{consts.ParamID: {id}}, runOpts...)
}

// Get returns a single formatted order with its shipping detail flattened in.
func (s *OrderService) Get(ctx context.Context, id string, runOpts ...RunOption) (format.Record, error) {
	env, err := s.GetJSON(ctx, id, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecord(env)
}

// ListJSON returns the raw envelope for a page of orders. A non-zero since
// restricts the result to orders changed after it.
func (s *OrderService) ListJSON(ctx context.Context, page *Page, since time.Time, runOpts ...RunOption) (*Envelope, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	q := page.values()
	if !since.IsZero() {
		q.Set(consts.ParamSince, since.UTC().Format(consts.SinceLayout))
	}
	return s.c.Get(ctx, consts.OrderMultiGetPath, q, runOpts...)
}

// List returns a page of formatted orders.
func (s *OrderService) List(ctx context.Context, page *Page, since time.Time, runOpts ...RunOption) ([]format.Record, error) {
	env, err := s.ListJSON(ctx, page, since, runOpts...)
	if err != nil {
		return nil, err
	}
	return formatRecords(env)
}
