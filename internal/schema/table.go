package schema

import (
	"fmt"
	"strings"
)

type constraintKind int

const (
	constraintPrimaryKey constraintKind = iota
	constraintUnique
)

type constraint struct {
	kind    constraintKind
	columns []string
}

func (c constraint) String() string {
	keyword := "UNIQUE"
	if c.kind == constraintPrimaryKey {
		keyword = "PRIMARY KEY"
	}
	return fmt.Sprintf("%s (%s)", keyword, strings.Join(c.columns, ","))
}

// Table pairs a schema with a table name and its named constraints.
type Table struct {
	Name        string
	Schema      *Schema
	constraints []constraint
}

func NewTable(name string, s *Schema) *Table {
	return &Table{Name: name, Schema: s}
}

func (t *Table) WithPrimaryKey(columns ...string) *Table {
	t.constraints = append(t.constraints, constraint{kind: constraintPrimaryKey, columns: columns})
	return t
}

func (t *Table) WithUnique(columns ...string) *Table {
	t.constraints = append(t.constraints, constraint{kind: constraintUnique, columns: columns})
	return t
}

func (t *Table) HasOptions() bool {
	return len(t.constraints) > 0
}

// Options renders the constraints, e.g. "PRIMARY KEY (name),UNIQUE (a,b)".
func (t *Table) Options() string {
	parts := make([]string, len(t.constraints))
	for i, c := range t.constraints {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Definition renders a CREATE TABLE statement for the created columns.
// typeName maps storage types to the dialect's column types and quote
// escapes identifiers.
func (t *Table) Definition(typeName func(Type) string, quote func(string) string) (string, error) {
	const op = "schema.Table.Definition"

	if quote == nil {
		quote = func(s string) string { return s }
	}

	var defs []string
	for _, c := range t.Schema.Describe() {
		if !c.IsCreated {
			continue
		}
		defs = append(defs, quote(c.Name)+" "+typeName(c.Type))
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("%s: table %q has no created columns", op, t.Name)
	}

	for _, c := range t.constraints {
		cols := make([]string, len(c.columns))
		for i, name := range c.columns {
			if !t.Schema.Has(name) {
				return "", fmt.Errorf("%s: constraint on %q: %w", op, name, ErrUnknownColumn)
			}
			cols[i] = quote(name)
		}
		defs = append(defs, constraint{kind: c.kind, columns: cols}.String())
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(t.Name), strings.Join(defs, ", ")), nil
}
