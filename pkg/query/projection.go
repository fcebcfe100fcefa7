// Package query builds parameterized PostgreSQL SELECT statements from a
// projection of view field names onto qualified columns.
package query

import "strings"

// ProjectionMap maps view field names to qualified columns (alias.column)
// for a base table and any joined tables.
type ProjectionMap struct {
	from    string
	alias   string
	scope   string
	joins   []string
	byName  map[string]string
	byCol   map[string]string
	ordered []string
}

// NewProjectionMap starts a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:   schema + "." + table + " " + alias,
		alias:  alias,
		scope:  alias,
		byName: make(map[string]string),
		byCol:  make(map[string]string),
	}
}

// Project selects column from the current table under the view name.
func (p *ProjectionMap) Project(column, name string) *ProjectionMap {
	qualified := p.scope + "." + column
	p.byName[name] = qualified
	if _, taken := p.byCol[column]; !taken {
		p.byCol[column] = qualified
	}
	p.ordered = append(p.ordered, qualified)
	return p
}

// Join adds a join and makes alias the table for subsequent Project calls.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	p.scope = alias
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string { return p.alias }

// Table returns the base table reference, "schema.table alias".
func (p *ProjectionMap) Table() string { return p.from }

// From returns the base table reference followed by its joins.
func (p *ProjectionMap) From() string {
	return strings.Join(append([]string{p.from}, p.joins...), " ")
}

// Lookup resolves a view name, or failing that a bare column name, to its
// qualified column. A bare column shared by joined tables resolves to the
// first table that projected it.
func (p *ProjectionMap) Lookup(name string) (string, bool) {
	if col, ok := p.byName[name]; ok {
		return col, true
	}
	col, ok := p.byCol[name]
	return col, ok
}

// Column returns the qualified column for name, or name itself when unmapped.
func (p *ProjectionMap) Column(name string) string {
	if col, ok := p.Lookup(name); ok {
		return col
	}
	return name
}

// Columns returns the projected columns in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
