package schema

// ColumnDescriptor is one row returned by a catalog query.
type ColumnDescriptor struct {
	TableName  string
	ColumnName string
	DataType   string
}

// Table is a table with its columns in catalog order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column is a table column and its declared data type.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ColumnCount returns the total number of columns across tables.
func ColumnCount(tables []Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Columns)
	}
	return n
}

// Names returns the table names in order.
func Names(tables []Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
