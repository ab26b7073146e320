package records

import "testing"

/*
TestString covers rendering of the value shapes that occur in the pipeline.
*/
func TestString(t *testing.T) {
	r := Record{
		"s": "East",
		"i": int64(42),
		"f": 19.99,
		"n": nil,
	}
	tests := []struct {
		key  string
		want string
	}{
		{"s", "East"},
		{"i", "42"},
		{"f", "19.99"},
		{"n", ""},
		{"absent", ""},
	}
	for _, tt := range tests {
		if got := r.String(tt.key); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

/*
TestInt64 checks parsing of strings, acceptance of integral floats, and
rejection of everything else.
*/
func TestInt64(t *testing.T) {
	r := Record{
		"i":        int64(7),
		"sint":     " 12 ",
		"intfloat": 3.0,
		"frac":     3.5,
		"word":     "seven",
		"n":        nil,
	}
	tests := []struct {
		key  string
		want int64
		ok   bool
	}{
		{"i", 7, true},
		{"sint", 12, true},
		{"intfloat", 3, true},
		{"frac", 0, false},
		{"word", 0, false},
		{"n", 0, false},
		{"absent", 0, false},
	}
	for _, tt := range tests {
		got, ok := r.Int64(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int64(%q) = %d,%v want %d,%v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

/*
TestFloat64 checks numeric widening and string parsing.
*/
func TestFloat64(t *testing.T) {
	r := Record{"f": 2.5, "i": int64(4), "s": "1.25", "bad": "x"}
	if got, ok := r.Float64("f"); !ok || got != 2.5 {
		t.Errorf("Float64(f) = %v,%v", got, ok)
	}
	if got, ok := r.Float64("i"); !ok || got != 4 {
		t.Errorf("Float64(i) = %v,%v", got, ok)
	}
	if got, ok := r.Float64("s"); !ok || got != 1.25 {
		t.Errorf("Float64(s) = %v,%v", got, ok)
	}
	if _, ok := r.Float64("bad"); ok {
		t.Error("Float64(bad) ok, want false")
	}
}

/*
TestCloneAndEmpty verifies clones do not alias and blank rows report empty.
*/
func TestCloneAndEmpty(t *testing.T) {
	r := Record{"a": "x"}
	c := r.Clone()
	c["a"] = "y"
	if r["a"] != "x" {
		t.Errorf("clone aliased source: %v", r)
	}

	if (Record{"a": "  ", "b": nil}).Empty() != true {
		t.Error("blank record not empty")
	}
	if (Record{"a": "x"}).Empty() {
		t.Error("non-blank record reported empty")
	}
	if !(Record{}).Empty() {
		t.Error("zero record not empty")
	}
}
