package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a projected view name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses a comma-separated sort string such as
// "Deadline,-Company", where a leading "-" sorts descending.
// Blank terms are skipped and empty input yields nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// params collects positional arguments and hands out their placeholders.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

type condition func(p *params) string

// Builder assembles SELECT statements over a ProjectionMap. Placeholders are
// numbered in the order conditions were added.
type Builder struct {
	projection  *ProjectionMap
	where       []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder starts a query over projection. defaultSort applies when no
// explicit ordering is set.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// OrderByFields replaces the default ordering. Fields the projection cannot
// resolve are dropped; if none remain the default ordering applies.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals matches field = value. Nil values are skipped.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereGTE matches field >= value. Nil values are skipped.
func (b *Builder) WhereGTE(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereLTE matches field <= value. Nil values are skipped.
func (b *Builder) WhereLTE(field string, value any) *Builder {
	return b.compare(field, "<=", value)
}

// WhereEqualsOrNull matches field = value or a NULL field. Nil values are skipped.
func (b *Builder) WhereEqualsOrNull(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.add(func(p *params) string {
		return fmt.Sprintf("(%s IS NULL OR %s = %s)", col, col, p.bind(value))
	})
}

// WhereContains adds a case-insensitive substring match on one field.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches value as a case-insensitive substring of any of fields.
// A nil or empty value is skipped.
func (b *Builder) WhereSearch(value *string, fields ...string) *Builder {
	if value == nil || *value == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *value + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}
	return b.add(func(p *params) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + p.bind(pattern)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

// Build returns the full SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	var p params
	sql := "SELECT " + b.projection.Columns() + " FROM " + b.projection.From() + b.whereClause(&p) + b.orderClause()
	return sql, p.args
}

// BuildCount returns a COUNT(*) over the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	var p params
	sql := "SELECT COUNT(*) FROM " + b.projection.From() + b.whereClause(&p)
	return sql, p.args
}

// BuildPage returns Build limited to the 1-based page of pageSize rows.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, (page-1)*pageSize), args
}

// BuildSingle selects the row whose idField equals id, ignoring other conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	var p params
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		b.projection.Columns(), b.projection.From(), b.projection.Column(idField), p.bind(id))
	return sql, p.args
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.add(func(p *params) string {
		return col + " " + op + " " + p.bind(value)
	})
}

func (b *Builder) add(c condition) *Builder {
	b.where = append(b.where, c)
	return b
}

func (b *Builder) whereClause(p *params) string {
	if len(b.where) == 0 {
		return ""
	}
	clauses := make([]string, len(b.where))
	for i, c := range b.where {
		clauses[i] = c(p)
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func (b *Builder) orderClause() string {
	terms := b.sortTerms(b.sort)
	if len(terms) == 0 {
		terms = b.sortTerms(b.defaultSort)
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (b *Builder) sortTerms(fields []SortField) []string {
	var terms []string
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}
	return terms
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
