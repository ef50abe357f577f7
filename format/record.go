package format

import (
	"encoding/json"
	"fmt"
	"time"
)

// String returns the field as a string. Numbers are rendered in decimal form.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the field as a bool, coercing string values.
func (r Record) Bool(key string) (bool, bool) {
	b, ok := Coerce(KindBool, r[key]).(bool)
	return b, ok
}

// Float returns the field as a float64, coercing string values.
func (r Record) Float(key string) (float64, bool) {
	f, ok := Coerce(KindFloat, r[key]).(float64)
	return f, ok
}

// Int returns the field as an int64, coercing string values.
func (r Record) Int(key string) (int64, bool) {
	i, ok := Coerce(KindInt, r[key]).(int64)
	return i, ok
}

// Time returns the field as a time.Time, parsing string values.
func (r Record) Time(key string) (time.Time, bool) {
	t, ok := Coerce(KindTime, r[key]).(time.Time)
	return t, ok
}

// Records converts a formatted list into records. It fails on the first
// element that is not an object.
func Records(v any) ([]Record, error) {
	switch t := v.(type) {
	case nil:
		return []Record{}, nil
	case []Record:
		return t, nil
	case []any:
		out := make([]Record, 0, len(t))
		for i, item := range t {
			r, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not an object", i, item)
			}
			out = append(out, Record(r))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}
