// Package normalize turns scrubbed raw tables into canonical entity rows
// according to a schema.Contract. The policy is best-effort: values that fail
// coercion degrade to nil, rows missing required fields are excluded, and
// every exclusion is counted in Stats instead of raised as an error.
package normalize

import (
	"strconv"
	"strings"

	"smartsales/internal/schema"
	"smartsales/pkg/records"
)

// Stats reports what normalization did to a batch. Counts are returned to
// the caller so drop accounting does not depend on log scraping.
type Stats struct {
	Input          int  // raw rows in
	Output         int  // canonical rows out
	CoercedNull    int  // present values that failed int/float coercion
	DroppedMissing int  // rows dropped for a nil required field
	DroppedDupKey  int  // rows dropped as later duplicates of a key
	SyntheticKeys  bool // key column regenerated as a dense sequence
}

// Entity normalizes one raw table against its contract: rename raw headers to
// canonical names (unmapped columns are dropped), coerce typed columns, drop
// rows missing required fields, collapse duplicate keys keeping the first in
// source order, and regenerate synthetic keys when the contract allows it and
// the source key column is unusable.
func Entity(in []records.Record, c schema.Contract) ([]records.Record, Stats) {
	stats := Stats{Input: len(in)}

	out := make([]records.Record, 0, len(in))
	for _, raw := range in {
		row := rename(raw, c)
		keep := true
		for _, f := range c.Fields {
			v, coerced := coerce(row[f.Name], f.Type)
			row[f.Name] = v
			if coerced {
				stats.CoercedNull++
			}
			if f.Required && v == nil {
				keep = false
			}
		}
		if !keep {
			stats.DroppedMissing++
			continue
		}
		out = append(out, row)
	}

	if c.SyntheticKey && needSyntheticKey(out, c.Key) {
		for i, row := range out {
			row[c.Key] = int64(i + 1)
		}
		stats.SyntheticKeys = true
	} else {
		out, stats.DroppedDupKey = dropDupKeys(out, c.Key)
	}

	stats.Output = len(out)
	return out, stats
}

// rename maps raw headers to canonical names. Only mapped columns survive;
// a raw column whose canonical name is not declared in Fields is dropped too.
func rename(raw records.Record, c schema.Contract) records.Record {
	declared := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		declared[f.Name] = true
	}
	row := make(records.Record, len(c.Fields))
	for from, to := range c.HeaderMap {
		if !declared[to] {
			continue
		}
		if v, ok := raw[from]; ok {
			row[to] = v
		}
	}
	return row
}

// coerce converts v to the field type. The second return reports a value that
// was present but unparseable and therefore degraded to nil.
func coerce(v any, typ string) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch typ {
	case "int":
		switch t := v.(type) {
		case int64:
			return t, false
		case float64:
			if t == float64(int64(t)) {
				return int64(t), false
			}
			return nil, true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return nil, false
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, false
			}
			// Numeric text like "7.0" still carries an integral key.
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
				return int64(f), false
			}
			return nil, true
		default:
			return nil, true
		}
	case "float":
		switch t := v.(type) {
		case float64:
			return t, false
		case int64:
			return float64(t), false
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return nil, false
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, false
			}
			return nil, true
		default:
			return nil, true
		}
	default: // "text"
		if s, ok := v.(string); ok {
			if s == "" {
				return nil, false
			}
			return s, false
		}
		return v, false
	}
}

// needSyntheticKey reports whether the surviving rows lack a usable key
// column: any nil key or any duplicate forces full regeneration.
func needSyntheticKey(rows []records.Record, key string) bool {
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		id, ok := row.Int64(key)
		if !ok {
			return true
		}
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

// dropDupKeys collapses rows sharing a key, keeping the first in source
// order, and returns the number dropped.
func dropDupKeys(rows []records.Record, key string) ([]records.Record, int) {
	seen := make(map[int64]bool, len(rows))
	out := rows[:0]
	dropped := 0
	for _, row := range rows {
		id, ok := row.Int64(key)
		if !ok {
			// Required keys were already enforced; a nil key here belongs to
			// a contract without Required on the key and cannot be loaded.
			dropped++
			continue
		}
		if seen[id] {
			dropped++
			continue
		}
		seen[id] = true
		out = append(out, row)
	}
	return out, dropped
}

// Rows projects canonical records into positional values ordered by the
// contract columns, ready for batched insertion.
func Rows(rows []records.Record, c schema.Contract) [][]any {
	cols := c.Columns()
	out := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, len(cols))
		for j, col := range cols {
			vals[j] = row[col]
		}
		out[i] = vals
	}
	return out
}
