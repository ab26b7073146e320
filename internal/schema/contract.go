// Package schema owns the canonical shape of the warehouse: per-entity
// normalization contracts (raw header rename maps, column types, key rules)
// and the SQL table definitions derived from them.
package schema

// Field describes one canonical column of an entity.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "int" | "float" | "text"
	Required bool   `json:"required,omitempty"`
}

// Contract drives normalization of one raw table into its canonical form.
//
// HeaderMap renames source headers (case-sensitive, post-scrub) to canonical
// names; columns absent from Fields are dropped. Key names the primary key
// column. SyntheticKey allows the key to be regenerated as a dense 1..N
// sequence when the source column is missing or unusable after coercion.
type Contract struct {
	Name         string            `json:"name"`
	Key          string            `json:"key"`
	SyntheticKey bool              `json:"synthetic_key,omitempty"`
	Fields       []Field           `json:"fields"`
	HeaderMap    map[string]string `json:"header_map,omitempty"`
}

// Columns returns the canonical column names in declaration order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Customers is the normalization contract for the customer dimension.
func Customers() Contract {
	return Contract{
		Name: "customer",
		Key:  "customer_id",
		Fields: []Field{
			{Name: "customer_id", Type: "int", Required: true},
			{Name: "name", Type: "text"},
			{Name: "region", Type: "text"},
			{Name: "join_date", Type: "text"},
		},
		HeaderMap: map[string]string{
			"customerid": "customer_id",
			"name":       "name",
			"region":     "region",
			"joindate":   "join_date",
		},
	}
}

// Products is the normalization contract for the product dimension.
func Products() Contract {
	return Contract{
		Name: "product",
		Key:  "product_id",
		Fields: []Field{
			{Name: "product_id", Type: "int", Required: true},
			{Name: "product_name", Type: "text"},
			{Name: "category", Type: "text"},
		},
		HeaderMap: map[string]string{
			"productid":   "product_id",
			"productname": "product_name",
			"category":    "category",
		},
	}
}

// Sales is the normalization contract for the sales fact table. The key may
// be regenerated: transaction ids from the source are kept when usable,
// otherwise replaced by a dense sequence over the surviving rows.
func Sales() Contract {
	return Contract{
		Name:         "sales",
		Key:          "sales_id",
		SyntheticKey: true,
		Fields: []Field{
			{Name: "sales_id", Type: "int"},
			{Name: "customer_id", Type: "int", Required: true},
			{Name: "product_id", Type: "int", Required: true},
			{Name: "sale_amount", Type: "float", Required: true},
			{Name: "sale_date", Type: "text"},
		},
		HeaderMap: map[string]string{
			"transactionid": "sales_id",
			"customerid":    "customer_id",
			"productid":     "product_id",
			"saleamount":    "sale_amount",
			"saledate":      "sale_date",
		},
	}
}
