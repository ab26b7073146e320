package schema

// Warehouse table definitions. LoadOrder is the dependency order for a full
// reload: dimensions before facts, since sales references both dimensions.

// DimDate is the calendar dimension table.
func DimDate() TableDef {
	return TableDef{
		Name: "dim_date",
		Columns: []ColumnDef{
			{Name: "date_id", SQLType: "INTEGER", PrimaryKey: true},
			{Name: "full_date", SQLType: "TEXT"},
			{Name: "year", SQLType: "INTEGER"},
			{Name: "month", SQLType: "INTEGER"},
			{Name: "month_name", SQLType: "TEXT"},
			{Name: "day", SQLType: "INTEGER"},
			{Name: "week", SQLType: "INTEGER"},
		},
	}
}

// Customer is the customer dimension table.
func Customer() TableDef {
	return TableDef{
		Name: "customer",
		Columns: []ColumnDef{
			{Name: "customer_id", SQLType: "INTEGER", PrimaryKey: true},
			{Name: "name", SQLType: "TEXT", Nullable: true},
			{Name: "region", SQLType: "TEXT", Nullable: true},
			{Name: "join_date", SQLType: "TEXT", Nullable: true},
		},
	}
}

// Product is the product dimension table.
func Product() TableDef {
	return TableDef{
		Name: "product",
		Columns: []ColumnDef{
			{Name: "product_id", SQLType: "INTEGER", PrimaryKey: true},
			{Name: "product_name", SQLType: "TEXT", Nullable: true},
			{Name: "category", SQLType: "TEXT", Nullable: true},
		},
	}
}

// SalesTable is the sales fact table, referencing both dimensions.
func SalesTable() TableDef {
	return TableDef{
		Name: "sales",
		Columns: []ColumnDef{
			{Name: "sales_id", SQLType: "INTEGER", PrimaryKey: true},
			{Name: "customer_id", SQLType: "INTEGER"},
			{Name: "product_id", SQLType: "INTEGER"},
			{Name: "sale_amount", SQLType: "REAL"},
			{Name: "sale_date", SQLType: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{
			{Column: "customer_id", RefTable: "customer", RefColumn: "customer_id"},
			{Column: "product_id", RefTable: "product", RefColumn: "product_id"},
		},
	}
}

// LoadOrder lists all warehouse tables in creation/insert dependency order.
func LoadOrder() []TableDef {
	return []TableDef{DimDate(), Customer(), Product(), SalesTable()}
}
