// Package mapper binds models.File values to and from named storage
// columns described by a schema.Schema.
package mapper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/schema"
)

const (
	ColumnName           = "name"
	ColumnCreationTime   = "creation_time"
	ColumnLastModifyTime = "last_modify_time"
	ColumnAccessTime     = "access_time"
	ColumnFlags          = "flags"
	ColumnData           = "data"
	ColumnLength         = "length"
)

// NewFileSchema builds the column layout of a stored file.
func NewFileSchema() *schema.Schema {
	return schema.MustNew(
		schema.Column{Name: ColumnName, Type: schema.TypeText, IsKeyColumn: true, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnCreationTime, Type: schema.TypeTimestamp, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnLastModifyTime, Type: schema.TypeTimestamp, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnAccessTime, Type: schema.TypeTimestamp, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnFlags, Type: schema.TypeUByte, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnData, Type: schema.TypeBlob, IsCreated: true, IsSaved: true},
		schema.Column{Name: ColumnLength, Type: schema.TypeInt32},
	)
}

type FileMapper struct {
	schema *schema.Schema
}

func NewFileMapper(s *schema.Schema) *FileMapper {
	return &FileMapper{schema: s}
}

func (m *FileMapper) Schema() *schema.Schema {
	return m.schema
}

func (m *FileMapper) TypeOf(column string) (schema.Type, bool) {
	return m.schema.TypeOf(column)
}

// Bind returns the value of one column of f.
func (m *FileMapper) Bind(f *models.File, column string) (any, error) {
	const op = "mapper.FileMapper.Bind"

	if !m.schema.Has(column) {
		return nil, fmt.Errorf("%s: %q: %w", op, column, schema.ErrUnknownColumn)
	}

	switch column {
	case ColumnName:
		return f.Name, nil
	case ColumnCreationTime:
		return f.CreationTime, nil
	case ColumnLastModifyTime:
		return f.LastModifyTime, nil
	case ColumnAccessTime:
		return f.AccessTime, nil
	case ColumnFlags:
		return uint8(f.Flags), nil
	case ColumnData:
		if f.Data == nil {
			return []byte{}, nil
		}
		return f.Data, nil
	case ColumnLength:
		return int32(f.Length()), nil
	}

	// Column declared by an alternate schema that File does not carry.
	return nil, fmt.Errorf("%s: %q: %w", op, column, schema.ErrUnknownColumn)
}

func (m *FileMapper) Values(f *models.File, columns []string) ([]any, error) {
	values := make([]any, len(columns))
	for i, column := range columns {
		v, err := m.Bind(f, column)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Load builds a file from a storage row. Unknown columns are ignored,
// missing or NULL values become zero values and Length always follows
// the loaded data.
func (m *FileMapper) Load(row models.Row) *models.File {
	f := &models.File{Data: []byte{}}

	for column, value := range row {
		if !m.schema.Has(column) || value == nil {
			continue
		}
		switch column {
		case ColumnName:
			f.Name = asString(value)
		case ColumnCreationTime:
			f.CreationTime = asTime(value)
		case ColumnLastModifyTime:
			f.LastModifyTime = asTime(value)
		case ColumnAccessTime:
			f.AccessTime = asTime(value)
		case ColumnFlags:
			f.Flags = models.Flags(asInt64(value))
		case ColumnData:
			f.SetData(asBytes(value))
		}
	}

	return f
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func asBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return append([]byte{}, t...)
	case string:
		return []byte(t)
	default:
		return []byte{}
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case models.Flags:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	case int64:
		return time.Unix(0, t).UTC()
	default:
		return time.Time{}
	}
}
