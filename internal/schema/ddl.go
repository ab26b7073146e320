package schema

import (
	"fmt"
	"strings"
)

// ColumnDef is a minimal description of a DB column.
type ColumnDef struct {
	Name       string // e.g., "customer_id"
	SQLType    string // e.g., "INTEGER", "REAL", "TEXT"
	Nullable   bool
	PrimaryKey bool
}

// ForeignKey declares a single-column reference to another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef describes a warehouse table to create.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
}

// QuoteFn quotes an identifier for a particular SQL dialect. AnsiQuote is
// correct for sqlite and Postgres; the mysql backend supplies backticks.
type QuoteFn func(string) string

// AnsiQuote double-quotes an identifier, doubling embedded quotes.
func AnsiQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// BuildCreateTableSQL emits a CREATE TABLE statement for t. Column order and
// the trailing PRIMARY KEY / FOREIGN KEY clauses follow declaration order so
// regenerated DDL is byte-stable.
func BuildCreateTableSQL(t TableDef, quote QuoteFn) (string, error) {
	if t.Name == "" {
		return "", fmt.Errorf("table name required")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("at least one column required")
	}
	if quote == nil {
		quote = AnsiQuote
	}
	var cols []string
	var pks []string
	for _, c := range t.Columns {
		if c.Name == "" || c.SQLType == "" {
			return "", fmt.Errorf("column name and type required")
		}
		def := quote(c.Name) + " " + c.SQLType
		if !c.Nullable && !c.PrimaryKey {
			def += " NOT NULL"
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, quote(c.Name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ",")))
	}
	for _, fk := range t.ForeignKeys {
		if fk.Column == "" || fk.RefTable == "" || fk.RefColumn == "" {
			return "", fmt.Errorf("foreign key column, table and ref column required")
		}
		cols = append(cols, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(fk.Column), quote(fk.RefTable), quote(fk.RefColumn)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quote(t.Name), strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL emits a DROP TABLE IF EXISTS statement.
func BuildDropTableSQL(name string, quote QuoteFn) string {
	if quote == nil {
		quote = AnsiQuote
	}
	return "DROP TABLE IF EXISTS " + quote(name)
}
