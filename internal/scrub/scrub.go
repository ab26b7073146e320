// Package scrub is the generic row cleaner applied to every raw table before
// entity normalization: header standardization, whitespace trimming, empty
// row and exact-duplicate removal. Steps implement Transformer and compose
// into a Chain, so each step stays independently testable.
package scrub

import (
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"smartsales/pkg/records"
)

// Transformer rewrites a batch of records.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	if len(c) == 0 {
		return in
	}

	out := in
	for _, t := range c {
		if t == nil {
			continue
		}
		out = t.Apply(out)
	}
	return out
}

// StandardizeHeaders lowercases record keys and strips spaces, underscores
// and dashes, so source headers like "Customer ID" and "CustomerID" collapse
// to "customerid" before contract-driven renaming. Rename maps additional
// source aliases (matched after standardization) onto their canonical form,
// for feeds whose headers do not collapse on their own.
type StandardizeHeaders struct {
	Rename map[string]string
}

func (s StandardizeHeaders) Apply(in []records.Record) []records.Record {
	for i, r := range in {
		out := make(records.Record, len(r))
		for k, v := range r {
			name := standardizeName(k)
			if alias, ok := s.Rename[name]; ok {
				name = alias
			}
			out[name] = v
		}
		in[i] = out
	}
	return in
}

func standardizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, s)
}

// Trim strips leading and trailing whitespace from every string value.
type Trim struct{}

func (Trim) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				r[k] = strings.TrimSpace(s)
			}
		}
	}
	return in
}

// DropEmpty removes records whose values are all nil or blank. Filtering is
// in place; surviving order is preserved.
type DropEmpty struct{}

func (DropEmpty) Apply(in []records.Record) []records.Record {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, r := range in {
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// DropDuplicates removes duplicate records, keeping the first occurrence.
// Rows are fingerprinted with xxh3 over their sorted key/value pairs; hash
// collisions are resolved by comparing the rendered row. When Keys is set,
// only those columns participate in the fingerprint, so rows matching on the
// configured subset count as duplicates.
type DropDuplicates struct {
	Keys []string
}

func (d DropDuplicates) Apply(in []records.Record) []records.Record {
	if in == nil {
		return nil
	}
	seen := make(map[uint64][]string, len(in))
	out := in[:0]
next:
	for _, r := range in {
		key := fingerprint(r, d.Keys)
		sum := xxh3.HashString(key)
		for _, prev := range seen[sum] {
			if prev == key {
				continue next
			}
		}
		seen[sum] = append(seen[sum], key)
		out = append(out, r)
	}
	return out
}

// fingerprint renders a record as a stable "k=v" join, unit-separated so
// values containing '=' or ',' cannot alias another row. A non-empty subset
// restricts which columns participate.
func fingerprint(r records.Record, subset []string) string {
	var keys []string
	if len(subset) > 0 {
		keys = append([]string{}, subset...)
	} else {
		keys = make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.String(k))
		b.WriteByte(0x1f)
	}
	return b.String()
}

// Default is the standard cleaning chain applied to every raw input.
func Default() Chain {
	return Chain{StandardizeHeaders{}, Trim{}, DropEmpty{}, DropDuplicates{}}
}
