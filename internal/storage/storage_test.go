package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"smartsales/pkg/records"
)

// stubRepo records Insert calls for batching assertions.
type stubRepo struct {
	calls    [][][]any
	failCall int // 1-based call index that fails; 0 means never
}

func (s *stubRepo) Exec(ctx context.Context, query string) error { return nil }

func (s *stubRepo) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	s.calls = append(s.calls, rows)
	if s.failCall > 0 && len(s.calls) == s.failCall {
		return 0, errors.New("boom")
	}
	return int64(len(rows)), nil
}

func (s *stubRepo) IntSet(ctx context.Context, table, column string) (map[int64]struct{}, error) {
	return nil, nil
}

func (s *stubRepo) Select(ctx context.Context, query string) ([]string, []records.Record, error) {
	return nil, nil, nil
}

func (s *stubRepo) Quote(ident string) string { return ident }
func (s *stubRepo) Close() error              { return nil }

/*
TestRegistry covers driver registration, lookup failure for unknown drivers,
and the duplicate-registration panic.
*/
func TestRegistry(t *testing.T) {
	Register("stub_test", func(ctx context.Context, cfg Config) (Repository, error) {
		return &stubRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Driver: "stub_test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()

	if _, err := New(context.Background(), Config{Driver: "no_such_driver"}); err == nil {
		t.Error("expected error for unknown driver")
	}

	found := false
	for _, d := range Drivers() {
		if d == "stub_test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Drivers() = %v, missing stub_test", Drivers())
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("stub_test", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, nil
	})
}

/*
TestInsertBatches verifies chunk sizes, totals, and the error wrapping that
names the failing table.
*/
func TestInsertBatches(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rows := make([][]any, 7)
	for i := range rows {
		rows[i] = []any{int64(i)}
	}

	repo := &stubRepo{}
	total, err := InsertBatches(context.Background(), repo, "customer", []string{"customer_id"}, rows, 3, log)
	if err != nil {
		t.Fatalf("InsertBatches: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	sizes := make([]int, len(repo.calls))
	for i, c := range repo.calls {
		sizes[i] = len(c)
	}
	if fmt.Sprint(sizes) != "[3 3 1]" {
		t.Errorf("batch sizes = %v, want [3 3 1]", sizes)
	}

	failing := &stubRepo{failCall: 2}
	total, err = InsertBatches(context.Background(), failing, "sales", []string{"sales_id"}, rows, 3, log)
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if got := err.Error(); got != "insert into sales: boom" {
		t.Errorf("err = %q", got)
	}
	if total != 3 {
		t.Errorf("total before failure = %d, want 3", total)
	}
}

/*
TestInsertBatches_Defaults checks zero batch size falls back to the default
and empty input performs no calls.
*/
func TestInsertBatches_Defaults(t *testing.T) {
	repo := &stubRepo{}
	total, err := InsertBatches(context.Background(), repo, "product", []string{"product_id"}, nil, 0, nil)
	if err != nil {
		t.Fatalf("InsertBatches: %v", err)
	}
	if total != 0 || len(repo.calls) != 0 {
		t.Errorf("total=%d calls=%d, want 0/0", total, len(repo.calls))
	}
}
