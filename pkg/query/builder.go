// Package query builds parameterized PostgreSQL SELECT statements from a projection map.
package query

import (
	"fmt"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// SortField names a view field and its direction.
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	sort       SortField
}

// NewBuilder creates a Builder for the given projection. The optional
// defaultSort orders results from Build.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	b := &Builder{
		projection: projection,
		conditions: make([]condition, 0),
	}
	if len(defaultSort) > 0 {
		b.sort = defaultSort[0]
	}
	return b
}

// Build returns a SELECT query with the current conditions, ordering, and an
// optional limit. A limit of zero or less returns every matching row.
func (b *Builder) Build(limit int) (string, []any) {
	where, args := b.buildWhere(1)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
	)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}

	return sql, args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	col := b.projection.Column(idField)
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		col,
	)
	return sql, []any{id}
}

// OrderBy overrides the default sort.
func (b *Builder) OrderBy(field string, descending bool) *Builder {
	b.sort = SortField{Field: field, Descending: descending}
	return b
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", col),
		args:   []any{value},
	})
	return b
}

// WhereText adds an equality condition for an optional string.
// Nil or empty values are ignored.
func (b *Builder) WhereText(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.WhereEquals(field, *value)
}

func (b *Builder) buildOrderBy() string {
	if b.sort.Field == "" {
		return ""
	}

	dir := "ASC"
	if b.sort.Descending {
		dir = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", b.projection.Column(b.sort.Field), dir)
}

func (b *Builder) buildWhere(startParam int) (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
