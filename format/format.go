// Package format normalizes the loosely typed records returned by the Wish API.
//
// The API wraps records in single-key objects ({"Product": {...}}), sends many
// booleans and numbers as strings and nests order shipping data in a
// sub-object. Format turns that into flat records with Go-typed values.
// It never mutates its input and is idempotent.
package format

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Record is a single API record: field name to value.
type Record map[string]any

// Kind is the target type of a coerced field.
type Kind int

const (
	KindBool Kind = iota + 1
	KindFloat
	KindInt
	KindTime
)

// Rules maps field names to the type their values are coerced to.
var Rules = map[string]Kind{
	"is_promoted":                    KindBool,
	"enabled":                        KindBool,
	"is_wish_express":                KindBool,
	"requires_delivery_confirmation": KindBool,

	"price":              KindFloat,
	"shipping":           KindFloat,
	"msrp":               KindFloat,
	"cost":               KindFloat,
	"shipping_cost":      KindFloat,
	"order_total":        KindFloat,
	"localized_price":    KindFloat,
	"localized_shipping": KindFloat,

	"inventory":        KindInt,
	"quantity":         KindInt,
	"number_saves":     KindInt,
	"number_sold":      KindInt,
	"days_to_fulfill":  KindInt,
	"hours_to_fulfill": KindInt,

	"order_time":                KindTime,
	"last_updated":              KindTime,
	"date_uploaded":             KindTime,
	"released_to_merchant_time": KindTime,
}

// Envelopes are the single-key wrapper objects that get unwrapped.
var Envelopes = map[string]bool{
	"Product": true,
	"Variant": true,
	"Order":   true,
	"Tag":     true,
}

// Collections are fields holding lists of nested records.
var Collections = map[string]bool{
	"tags":      true,
	"auto_tags": true,
	"variants":  true,
}

// ShippingDetailKey is the nested object merged into its parent order.
const ShippingDetailKey = "ShippingDetail"

// TimeLayouts are tried, in order, for time strings cast does not recognize.
// Zoneless values are read as UTC.
var TimeLayouts = []string{
	"01-02-2006",
	"01-02-2006 15:04:05",
}

// Format normalizes a record or a list of records. Other values are returned unchanged.
func Format(v any) any {
	switch t := v.(type) {
	case Record:
		return FormatRecord(t)
	case map[string]any:
		return FormatRecord(t)
	case []any:
		return formatList(t)
	case []Record:
		out := make([]Record, len(t))
		for i, r := range t {
			out[i] = FormatRecord(r)
		}
		return out
	case []map[string]any:
		out := make([]Record, len(t))
		for i, r := range t {
			out[i] = FormatRecord(r)
		}
		return out
	default:
		return v
	}
}

// FormatRecord unwraps, flattens and coerces a single record.
func FormatRecord(r map[string]any) Record {
	r = unwrap(r)
	if r == nil {
		return nil
	}

	out := make(Record, len(r))
	for k, v := range r {
		if k == ShippingDetailKey {
			continue
		}
		out[k] = v
	}
	if raw, ok := r[ShippingDetailKey]; ok {
		detail, isMap := asMap(raw)
		if !isMap {
			out[ShippingDetailKey] = raw
		}
		for k, v := range detail {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}

	// Flattening can expose another envelope or ShippingDetail.
	if reshaped(out) {
		return FormatRecord(out)
	}

	for k, v := range out {
		out[k] = formatField(k, v)
	}
	return out
}

func reshaped(r Record) bool {
	if _, isMap := asMap(r[ShippingDetailKey]); isMap {
		return true
	}
	_, ok := unwrapOnce(r)
	return ok
}

func formatList(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Format(item)
	}
	return out
}

func formatField(name string, v any) any {
	if Collections[name] {
		return Format(v)
	}
	kind, ok := Rules[name]
	if !ok {
		return v
	}
	return Coerce(kind, v)
}

// unwrap strips nested single-key envelopes.
func unwrap(r map[string]any) map[string]any {
	for {
		inner, ok := unwrapOnce(r)
		if !ok {
			return r
		}
		r = inner
	}
}

func unwrapOnce(r map[string]any) (map[string]any, bool) {
	if len(r) != 1 {
		return nil, false
	}
	for k, v := range r {
		if Envelopes[k] {
			return asMap(v)
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

// Coerce converts v to kind. Values already of the target type, and values
// that cannot be converted, are returned unchanged.
func Coerce(kind Kind, v any) any {
	switch kind {
	case KindBool:
		return toBool(v)
	case KindFloat:
		return toFloat(v)
	case KindInt:
		return toInt(v)
	case KindTime:
		return toTime(v)
	default:
		return v
	}
}

func toBool(v any) any {
	switch t := v.(type) {
	case string:
		if b, err := cast.ToBoolE(strings.TrimSpace(t)); err == nil {
			return b
		}
	case json.Number:
		if b, err := cast.ToBoolE(t.String()); err == nil {
			return b
		}
	}
	return v
}

func toFloat(v any) any {
	switch t := v.(type) {
	case string:
		if f, err := cast.ToFloat64E(strings.TrimSpace(t)); err == nil {
			return f
		}
	case json.Number:
		if f, err := cast.ToFloat64E(t.String()); err == nil {
			return f
		}
	case int, int32, int64:
		if f, err := cast.ToFloat64E(t); err == nil {
			return f
		}
	}
	return v
}

func toInt(v any) any {
	switch t := v.(type) {
	case string:
		return parseInt(strings.TrimSpace(t), v)
	case json.Number:
		return parseInt(t.String(), v)
	case int, int32:
		if i, err := cast.ToInt64E(t); err == nil {
			return i
		}
	case float64:
		if i, ok := floatToInt64(t); ok {
			return i
		}
	}
	return v
}

// parseInt accepts integer strings and integral float strings ("42.0", "1e3").
func parseInt(s string, fallback any) any {
	if i, err := cast.ToInt64E(s); err == nil {
		return i
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return fallback
	}
	if i, ok := floatToInt64(f); ok {
		return i
	}
	return fallback
}

// floatToInt64 converts f only when it is integral and fits in an int64.
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if ts, err := cast.ToTimeInDefaultLocationE(s, time.UTC); err == nil {
		return ts.UTC()
	}
	for _, layout := range TimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return v
}
