package query

import "strings"

type column struct {
	name string
	view string
}

// ProjectionMap maps view field names to qualified SQL columns for a base table
// and any joined tables.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	joins   []string
	columns []column
	lookup  map[string]string
}

// NewProjectionMap creates a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make([]column, 0),
		lookup:  make(map[string]string),
	}
}

// Project adds a column of the base table exposed under the view name.
func (p *ProjectionMap) Project(col, view string) *ProjectionMap {
	return p.ProjectFrom(p.alias, col, view)
}

// ProjectFrom adds a column of a joined table identified by alias.
func (p *ProjectionMap) ProjectFrom(alias, col, view string) *ProjectionMap {
	qualified := alias + "." + col
	p.columns = append(p.columns, column{name: qualified, view: view})
	p.lookup[view] = qualified
	return p
}

// Join appends a raw join clause to the FROM expression.
func (p *ProjectionMap) Join(clause string) *ProjectionMap {
	p.joins = append(p.joins, clause)
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the FROM expression, including joins.
func (p *ProjectionMap) Table() string {
	from := p.schema + "." + p.table + " " + p.alias
	if len(p.joins) == 0 {
		return from
	}
	return from + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for a view name, or the input when unknown.
func (p *ProjectionMap) Column(view string) string {
	if col, ok := p.lookup[view]; ok {
		return col
	}
	return view
}

// Columns returns the comma-separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ColumnList(), ", ")
}

// ColumnList returns the qualified columns in projection order.
func (p *ProjectionMap) ColumnList() []string {
	list := make([]string, len(p.columns))
	for i, c := range p.columns {
		list[i] = c.name
	}
	return list
}
