package cube

import (
	"reflect"
	"testing"

	"smartsales/internal/config"
	"smartsales/pkg/records"
)

func regionFacts() []records.Record {
	return []records.Record{
		{"sales_id": int64(1), "region": "E", "amount": 10.0},
		{"sales_id": int64(2), "region": "E", "amount": 5.0},
		{"sales_id": int64(3), "region": "W", "amount": 7.0},
	}
}

/*
TestBuild_RegionSum is the canonical scenario: one dimension, one summed
metric. Expect two rows in first-appearance order with amount_sum 15 and 7,
and exact contributing id lists.
*/
func TestBuild_RegionSum(t *testing.T) {
	cube, err := Build(regionFacts(), Spec{
		Name:       "by_region",
		Dimensions: []string{"region"},
		Metrics:    []Metric{{Column: "amount", Funcs: []string{"sum"}}},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	wantCols := []string{"region", "amount_sum", "sale_ids"}
	if !reflect.DeepEqual(cube.Columns, wantCols) {
		t.Fatalf("columns = %v; want %v", cube.Columns, wantCols)
	}
	if len(cube.Rows) != 2 {
		t.Fatalf("rows = %d; want 2", len(cube.Rows))
	}
	if cube.Rows[0]["region"] != "E" || cube.Rows[0]["amount_sum"] != 15.0 {
		t.Fatalf("row 0 = %#v", cube.Rows[0])
	}
	if cube.Rows[1]["region"] != "W" || cube.Rows[1]["amount_sum"] != 7.0 {
		t.Fatalf("row 1 = %#v", cube.Rows[1])
	}
	if ids := cube.Rows[0][TraceColumn].([]int64); !reflect.DeepEqual(ids, []int64{1, 2}) {
		t.Fatalf("row 0 ids = %v; want [1 2]", ids)
	}
	if ids := cube.Rows[1][TraceColumn].([]int64); !reflect.DeepEqual(ids, []int64{3}) {
		t.Fatalf("row 1 ids = %v; want [3]", ids)
	}
}

/*
TestBuild_OrderIndependence verifies the result is the same set of
dimension-tuples with identical aggregates regardless of fact order, and
that id lists contain exactly the contributing rows.
*/
func TestBuild_OrderIndependence(t *testing.T) {
	spec := Spec{
		Dimensions: []string{"region"},
		Metrics:    []Metric{{Column: "amount", Funcs: []string{"sum"}}},
	}
	a, err := Build(regionFacts(), spec)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	reversed := regionFacts()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	b, err := Build(reversed, spec)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	index := func(c Cube) map[string]records.Record {
		m := map[string]records.Record{}
		for _, r := range c.Rows {
			m[r.String("region")] = r
		}
		return m
	}
	am, bm := index(a), index(b)
	if len(am) != len(bm) {
		t.Fatalf("row sets differ: %d vs %d", len(am), len(bm))
	}
	for k, ar := range am {
		br := bm[k]
		if ar["amount_sum"] != br["amount_sum"] {
			t.Fatalf("group %q: %v vs %v", k, ar["amount_sum"], br["amount_sum"])
		}
		aIDs := append([]int64{}, ar[TraceColumn].([]int64)...)
		bIDs := append([]int64{}, br[TraceColumn].([]int64)...)
		if len(aIDs) != len(bIDs) {
			t.Fatalf("group %q ids differ: %v vs %v", k, aIDs, bIDs)
		}
		seen := map[int64]bool{}
		for _, id := range aIDs {
			seen[id] = true
		}
		for _, id := range bIDs {
			if !seen[id] {
				t.Fatalf("group %q ids differ: %v vs %v", k, aIDs, bIDs)
			}
		}
	}
}

/*
TestBuild_MultiMetricNaming verifies multiple functions per column become
separate {column}_{function} columns, that an empty function name strips the
trailing separator, and that count counts non-null values only.
*/
func TestBuild_MultiMetricNaming(t *testing.T) {
	facts := []records.Record{
		{"sales_id": int64(1), "day": "Mon", "sale_amount": 10.0, "note": "x"},
		{"sales_id": int64(2), "day": "Mon", "sale_amount": 2.0, "note": nil},
	}
	spec := Spec{
		Dimensions: []string{"day"},
		Metrics: []Metric{
			{Column: "sale_amount", Funcs: []string{"sum", "mean", "min", "max"}},
			{Column: "note", Funcs: []string{"count"}},
			{Column: "sale_amount", Funcs: []string{""}},
		},
	}
	cube, err := Build(facts, spec)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	want := []string{"day", "sale_amount_sum", "sale_amount_mean", "sale_amount_min",
		"sale_amount_max", "note_count", "sale_amount", "sale_ids"}
	if !reflect.DeepEqual(cube.Columns, want) {
		t.Fatalf("columns = %v; want %v", cube.Columns, want)
	}
	row := cube.Rows[0]
	if row["sale_amount_sum"] != 12.0 || row["sale_amount_mean"] != 6.0 {
		t.Fatalf("sum/mean wrong: %#v", row)
	}
	if row["sale_amount_min"] != 2.0 || row["sale_amount_max"] != 10.0 {
		t.Fatalf("min/max wrong: %#v", row)
	}
	if row["note_count"] != int64(1) {
		t.Fatalf("note_count = %v; want 1", row["note_count"])
	}
	// The empty function name names the bare column; no value is computed.
	if v, ok := row["sale_amount"]; !ok || v != nil {
		t.Fatalf("bare column = %v,%v; want present and nil", v, ok)
	}
}

/*
TestBuild_EdgeCases covers the empty fact set (zero rows, correct header),
the no-dimension error, and the unknown-function error.
*/
func TestBuild_EdgeCases(t *testing.T) {
	empty, err := Build(nil, Spec{
		Dimensions: []string{"region"},
		Metrics:    []Metric{{Column: "amount", Funcs: []string{"sum"}}},
	})
	if err != nil {
		t.Fatalf("Build(empty) error: %v", err)
	}
	if len(empty.Rows) != 0 {
		t.Fatalf("empty cube has %d rows", len(empty.Rows))
	}
	if !reflect.DeepEqual(empty.Columns, []string{"region", "amount_sum", "sale_ids"}) {
		t.Fatalf("empty cube header = %v", empty.Columns)
	}

	if _, err := Build(nil, Spec{}); err == nil {
		t.Fatal("no dimensions: expected error")
	}
	if _, err := Build(nil, Spec{
		Dimensions: []string{"region"},
		Metrics:    []Metric{{Column: "amount", Funcs: []string{"median"}}},
	}); err == nil {
		t.Fatal("unknown function: expected error")
	}
}

/*
TestBuild_MetricWithoutFuncs verifies that an empty function list on a metric
is allowed (the metric simply contributes no columns).
*/
func TestBuild_MetricWithoutFuncs(t *testing.T) {
	cube, err := Build(regionFacts(), Spec{
		Dimensions: []string{"region"},
		Metrics:    []Metric{{Column: "amount"}},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !reflect.DeepEqual(cube.Columns, []string{"region", "sale_ids"}) {
		t.Fatalf("columns = %v", cube.Columns)
	}
}

/*
TestWithTimeAttrs verifies time-attribute derivation: parseable dates gain
day_of_week/month/year, unparseable dates are dropped and counted, inputs
are not mutated.
*/
func TestWithTimeAttrs(t *testing.T) {
	facts := []records.Record{
		{"sales_id": int64(1), "sale_date": "2024-01-31"},
		{"sales_id": int64(2), "sale_date": "not-a-date"},
		{"sales_id": int64(3), "sale_date": ""},
		{"sales_id": int64(4), "sale_date": "2024-02-01 10:30:00"},
	}
	out, dropped := WithTimeAttrs(facts, "sale_date", nil)
	if dropped != 2 {
		t.Fatalf("dropped = %d; want 2", dropped)
	}
	if len(out) != 2 {
		t.Fatalf("kept = %d; want 2", len(out))
	}
	if out[0]["day_of_week"] != "Wednesday" || out[0]["month"] != int64(1) || out[0]["year"] != int64(2024) {
		t.Fatalf("derived attrs wrong: %#v", out[0])
	}
	if out[1]["day_of_week"] != "Thursday" {
		t.Fatalf("datetime layout not parsed: %#v", out[1])
	}
	if _, ok := facts[0]["day_of_week"]; ok {
		t.Fatal("input record mutated")
	}
}

/*
TestSpecFromConfig verifies metric columns are ordered deterministically
(sorted by name) when converting from the map-based config form.
*/
func TestSpecFromConfig(t *testing.T) {
	spec := SpecFromConfig(config.CubeSpec{
		Name:       "c",
		Dimensions: []string{"day_of_week"},
		Metrics: map[string][]string{
			"sales_id":    {"count"},
			"sale_amount": {"sum", "mean"},
		},
	})
	if len(spec.Metrics) != 2 || spec.Metrics[0].Column != "sale_amount" || spec.Metrics[1].Column != "sales_id" {
		t.Fatalf("metrics order wrong: %#v", spec.Metrics)
	}
	want := []string{"day_of_week", "sale_amount_sum", "sale_amount_mean", "sales_id_count", "sale_ids"}
	if !reflect.DeepEqual(spec.ColumnNames(), want) {
		t.Fatalf("columns = %v; want %v", spec.ColumnNames(), want)
	}
	if spec.IDColumn != "" {
		t.Fatalf("IDColumn = %q; want empty (defaulted in Build)", spec.IDColumn)
	}

	withID := SpecFromConfig(config.CubeSpec{
		Name:       "c",
		Dimensions: []string{"region"},
		Metrics:    map[string][]string{"amount": {"sum"}},
		Options:    config.Options{"id_column": "order_id"},
	})
	if withID.IDColumn != "order_id" {
		t.Fatalf("IDColumn = %q; want order_id", withID.IDColumn)
	}
}
