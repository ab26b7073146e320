// Package mysql contains tests for helper utilities used by the MySQL adapter.
package mysql

import (
	"testing"

	"smartsales/internal/storage/sqldb"
)

// TestMyIdent verifies that myIdent correctly backtick-quotes identifiers and
// escapes backticks by doubling them.
func TestMyIdent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"simple", "`simple`"},
		{"sales", "`sales`"},
		{"tick`name", "`tick``name`"},
		{"weird``x", "`weird````x`"},
	}
	for _, tc := range cases {
		if got := myIdent(tc.in); got != tc.want {
			t.Fatalf("myIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestMyFQN verifies that myFQN correctly quotes schema-qualified names using
// backtick-quoted identifier segments.
func TestMyFQN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"sales", "`sales`"},
		{"dw.sales", "`dw`.`sales`"},
		{"dw.q4.sales", "`dw`.`q4`.`sales`"},
	}
	for _, tc := range cases {
		if got := myFQN(tc.in); got != tc.want {
			t.Fatalf("myFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestRepositoryQuote verifies the repository built by this adapter quotes
// identifiers through myFQN, so qualified table names stay segment-wise.
func TestRepositoryQuote(t *testing.T) {
	repo := sqldb.New(nil, myFQN)
	if got := repo.Quote("dw.sales"); got != "`dw`.`sales`" {
		t.Fatalf("Quote(dw.sales) = %q; want `dw`.`sales`", got)
	}
	if got := repo.Quote("customer_id"); got != "`customer_id`" {
		t.Fatalf("Quote(customer_id) = %q", got)
	}
}
