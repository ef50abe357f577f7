package consts

import "time"

const (
	HeaderRequestID   = "X-Request-Id"
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Base URLs.
const (
	SandboxBaseURL    = "https://sandbox.merchant.wish.com/v1"
	ProductionBaseURL = "https://merchant.wish.com/api/v1"
)

// Defaults.
const (
	DefaultTimeout   = 20000 * time.Millisecond
	DefaultPageStart = 0
	DefaultPageLimit = 50
)

// Request parameter names.
const (
	ParamKey       = "key"
	ParamID        = "id"
	ParamSKU       = "sku"
	ParamStart     = "start"
	ParamLimit     = "limit"
	ParamSince     = "since"
	ParamInventory = "inventory"
)

// Endpoint paths.
const (
	AuthTestPath               = "/auth_test"
	ProductPath                = "/product"
	ProductMultiGetPath        = "/product/multi-get"
	VariantPath                = "/variant"
	VariantMultiGetPath        = "/variant/multi-get"
	VariantUpdateInventoryPath = "/variant/update-inventory"
	OrderPath                  = "/order"
	OrderMultiGetPath          = "/order/multi-get"
)

// SinceLayout is the date format accepted by the "since" filter.
const SinceLayout = "2006-01-02T15:04:05"
