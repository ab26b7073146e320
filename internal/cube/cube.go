// Package cube builds multidimensional aggregates from loaded fact rows.
// A cube groups facts by an ordered list of dimension columns and computes
// one or more aggregation functions per metric column; every group also
// carries the list of contributing fact ids for traceability back to source
// rows. Cubes are transient: nothing here writes to the warehouse.
package cube

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"smartsales/internal/config"
	"smartsales/internal/datedim"
	"smartsales/pkg/records"
)

// TraceColumn is the traceability column attached to every cube row.
const TraceColumn = "sale_ids"

// Metric is one fact column with its requested aggregation functions.
type Metric struct {
	Column string
	Funcs  []string // "sum" | "mean" | "count" | "min" | "max"
}

// Spec describes a cube to build. Dimensions is the grouping order and the
// leading output column order; IDColumn defaults to sales_id.
type Spec struct {
	Name       string
	Dimensions []string
	Metrics    []Metric
	IDColumn   string
}

// Cube is the aggregation result. Rows appear in first-appearance order of
// each distinct dimension tuple in the input; the value under TraceColumn is
// the []int64 of contributing fact ids.
type Cube struct {
	Columns []string
	Rows    []records.Record
}

// SpecFromConfig converts a configured cube into a Spec. Map iteration order
// is not stable, so metric columns are sorted by name to keep output columns
// deterministic across runs. The "id_column" option overrides where the
// traceability ids come from.
func SpecFromConfig(cs config.CubeSpec) Spec {
	cols := make([]string, 0, len(cs.Metrics))
	for col := range cs.Metrics {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	metrics := make([]Metric, 0, len(cols))
	for _, col := range cols {
		metrics = append(metrics, Metric{Column: col, Funcs: cs.Metrics[col]})
	}
	return Spec{
		Name:       cs.Name,
		Dimensions: cs.Dimensions,
		Metrics:    metrics,
		IDColumn:   cs.Options.String("id_column", ""),
	}
}

// ColumnNames generates the cube header: dimensions, then one column per
// metric/function pair named {column}_{function} with trailing separators
// stripped for empty function names, then the traceability column.
func (s Spec) ColumnNames() []string {
	cols := append([]string{}, s.Dimensions...)
	for _, m := range s.Metrics {
		for _, fn := range m.Funcs {
			cols = append(cols, strings.TrimRight(m.Column+"_"+fn, "_"))
		}
	}
	return append(cols, TraceColumn)
}

type group struct {
	dims []string
	rows []records.Record
	ids  []int64
}

// Build groups facts by the exact tuple of dimension values and computes the
// requested aggregates. An empty fact set yields a cube with zero rows and
// the correct header. Unknown aggregation functions and empty dimension
// lists are configuration errors.
func Build(facts []records.Record, spec Spec) (Cube, error) {
	if len(spec.Dimensions) == 0 {
		return Cube{}, fmt.Errorf("cube %s: at least one dimension required", spec.Name)
	}
	for _, m := range spec.Metrics {
		for _, fn := range m.Funcs {
			if !knownFunc(fn) {
				return Cube{}, fmt.Errorf("cube %s: unknown aggregation %q for %s", spec.Name, fn, m.Column)
			}
		}
	}
	idCol := spec.IDColumn
	if idCol == "" {
		idCol = "sales_id"
	}

	// Group by dimension tuple, preserving first-appearance order.
	groups := map[string]*group{}
	var order []string
	for _, row := range facts {
		dims := make([]string, len(spec.Dimensions))
		for i, d := range spec.Dimensions {
			dims[i] = row.String(d)
		}
		key := strings.Join(dims, "\x1f")
		g, ok := groups[key]
		if !ok {
			g = &group{dims: dims}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
		if id, ok := row.Int64(idCol); ok {
			g.ids = append(g.ids, id)
		}
	}

	out := Cube{Columns: spec.ColumnNames()}
	for _, key := range order {
		g := groups[key]
		rec := make(records.Record, len(out.Columns))
		for i, d := range spec.Dimensions {
			rec[d] = g.dims[i]
		}
		for _, m := range spec.Metrics {
			for _, fn := range m.Funcs {
				name := strings.TrimRight(m.Column+"_"+fn, "_")
				rec[name] = aggregate(g.rows, m.Column, fn)
			}
		}
		rec[TraceColumn] = g.ids
		out.Rows = append(out.Rows, rec)
	}
	return out, nil
}

func knownFunc(fn string) bool {
	switch fn {
	case "sum", "mean", "count", "min", "max", "":
		return true
	}
	return false
}

// aggregate applies one function over the column within a group. An empty
// function name is a naming-only request: the bare {column} header is
// emitted with no computed value. count is the number of non-null values;
// the numeric functions skip values that are missing or non-numeric, and
// yield nil when nothing remains.
func aggregate(rows []records.Record, column, fn string) any {
	if fn == "" {
		return nil
	}
	if fn == "count" {
		n := int64(0)
		for _, r := range rows {
			if v, ok := r[column]; ok && v != nil {
				n++
			}
		}
		return n
	}

	var vals []float64
	for _, r := range rows {
		if f, ok := r.Float64(column); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	switch fn {
	case "sum":
		s := 0.0
		for _, v := range vals {
			s += v
		}
		return s
	case "mean":
		s := 0.0
		for _, v := range vals {
			s += v
		}
		return s / float64(len(vals))
	case "min":
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case "max":
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m
	}
	return nil
}

// timeLayouts are accepted sale_date renderings, most specific first.
var timeLayouts = []string{
	datedim.Layout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
}

// WithTimeAttrs derives time-based dimension columns (day_of_week, month,
// year) from dateColumn before grouping. Rows whose date fails to parse are
// dropped; the drop count is returned and logged. Input records are not
// mutated.
func WithTimeAttrs(facts []records.Record, dateColumn string, log *slog.Logger) ([]records.Record, int) {
	if log == nil {
		log = slog.Default()
	}
	out := make([]records.Record, 0, len(facts))
	dropped := 0
	for _, row := range facts {
		ts, ok := parseDate(row.String(dateColumn))
		if !ok {
			dropped++
			continue
		}
		r := row.Clone()
		r["day_of_week"] = ts.Weekday().String()
		r["month"] = int64(ts.Month())
		r["year"] = int64(ts.Year())
		out = append(out, r)
	}
	if dropped > 0 {
		log.Warn("rows with unparseable dates dropped before cubing",
			slog.String("column", dateColumn),
			slog.Int("dropped", dropped))
	}
	return out, dropped
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
