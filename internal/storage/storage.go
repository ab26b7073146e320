// Package storage contains the storage-agnostic warehouse contract and the
// backend registry. Concrete dialects live in subpackages and register a
// constructor at init time, so callers obtain a Repository via New without
// importing any driver directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"smartsales/pkg/records"
)

// Config selects and parameterizes a backend.
type Config struct {
	Driver string // registered backend name, e.g. "sqlite"
	DSN    string
}

// Repository is the minimal store surface the load and cube stages need.
// Implementations must be safe for sequential use within one run; the
// pipeline has a single writer and no concurrent readers.
type Repository interface {
	// Exec runs one DDL or maintenance statement.
	Exec(ctx context.Context, sql string) error
	// Insert appends rows to table in column order and reports the count.
	Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// IntSet reads the distinct integer values of one column, used for
	// referential pre-filtering against already persisted keys.
	IntSet(ctx context.Context, table, column string) (map[int64]struct{}, error)
	// Select runs an ad-hoc query and returns ordered columns plus rows.
	Select(ctx context.Context, query string) ([]string, []records.Record, error)
	// Quote renders an identifier for this dialect's DDL.
	Quote(ident string) string
	// Close releases the connection; must be called on every exit path.
	Close() error
}

// NewFunc constructs a backend Repository.
type NewFunc func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu       sync.RWMutex
	backends = map[string]NewFunc{}
)

// Register makes a backend available under the given driver name. Backends
// call this from init; duplicate registration panics early.
func Register(driver string, fn NewFunc) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := backends[driver]; dup {
		panic("storage: duplicate backend " + driver)
	}
	backends[driver] = fn
}

// New opens a Repository for cfg.Driver.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := backends[cfg.Driver]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown driver %q (have %v)", cfg.Driver, Drivers())
	}
	return fn(ctx, cfg)
}

// Drivers lists registered backend names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
