// Package schema describes storage records as ordered, typed columns.
// The same column list drives table definitions, insert and update
// statements and listing projections.
package schema

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("unknown column")

type Type int

const (
	TypeText Type = iota + 1
	TypeTimestamp
	TypeUByte
	TypeInt32
	TypeBlob
)

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeTimestamp:
		return "timestamp"
	case TypeUByte:
		return "ubyte"
	case TypeInt32:
		return "int32"
	case TypeBlob:
		return "blob"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Column is the declarative metadata of one storage column.
type Column struct {
	Name            string
	Type            Type
	IsKeyColumn     bool
	IsAutoGenerated bool // assigned by storage, never supplied on insert
	IsCreated       bool // part of the table layout
	IsSaved         bool // written when a record is stored
}

// Schema is immutable once built.
type Schema struct {
	columns []Column
	index   map[string]int
}

func New(columns ...Column) (*Schema, error) {
	const op = "schema.New"

	s := &Schema{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: column without a name", op)
		}
		if _, ok := s.index[c.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate column %q", op, c.Name)
		}
		s.index[c.Name] = len(s.columns)
		s.columns = append(s.columns, c)
	}
	return s, nil
}

func MustNew(columns ...Column) *Schema {
	s, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Describe returns the columns in declaration order.
func (s *Schema) Describe() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

func (s *Schema) TypeOf(name string) (Type, bool) {
	c, ok := s.Column(name)
	return c.Type, ok
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Columns returns the names of the columns matching pred, in order.
func (s *Schema) Columns(pred func(Column) bool) []string {
	var names []string
	for _, c := range s.columns {
		if pred == nil || pred(c) {
			names = append(names, c.Name)
		}
	}
	return names
}

// Enumerate lists displayable columns. Auto-generated columns are
// included only when showAutoGenerated is set.
func (s *Schema) Enumerate(showAutoGenerated bool) []string {
	return s.Columns(Displayable(showAutoGenerated))
}

func Created(c Column) bool { return c.IsCreated }

func Saved(c Column) bool { return c.IsSaved }

func Keys(c Column) bool { return c.IsKeyColumn }

// Insertable are saved columns storage does not assign itself.
func Insertable(c Column) bool { return c.IsSaved && !c.IsAutoGenerated }

// Updatable are saved, non-key columns.
func Updatable(c Column) bool { return c.IsSaved && !c.IsKeyColumn && !c.IsAutoGenerated }

func Displayable(showAutoGenerated bool) func(Column) bool {
	return func(c Column) bool {
		return showAutoGenerated || !c.IsAutoGenerated
	}
}
