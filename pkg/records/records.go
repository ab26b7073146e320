// Package records defines the row representation shared by every pipeline
// stage. A Record is a loosely typed map keyed by canonical column names;
// helpers provide tolerant accessors for the handful of value shapes that
// occur after CSV parsing and coercion (string, int64, float64, nil).
package records

import (
	"strconv"
	"strings"
)

// Record is a single table row. Values are nil, string, int64 or float64;
// the normalizer guarantees key columns are int64 or absent.
type Record map[string]any

// Clone returns a shallow copy of r. Values are immutable scalars, so a
// shallow copy is sufficient for pipeline stages that must not alias input.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value under key rendered as a string, or "" when the
// key is missing or nil.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Int64 returns the value under key as an int64. Strings are parsed after
// trimming; floats are accepted only when integral. ok reports whether a
// usable integer was found.
func (r Record) Int64(key string) (int64, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float64 returns the value under key as a float64. ok reports whether a
// usable number was found.
func (r Record) Float64(key string) (float64, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Empty reports whether every value in r is nil or a blank string.
func (r Record) Empty() bool {
	for _, v := range r {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}
