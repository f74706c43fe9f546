package repository

import (
	"fmt"
	"strings"

	"github.com/S1riyS/sqlfs/internal/mapper"
	"github.com/S1riyS/sqlfs/internal/schema"
	"github.com/lib/pq"
)

const likeEscape = '!'

// dialect captures what differs between the SQL backends.
type dialect struct {
	placeholder func(n int) string
	columnType  func(schema.Type) string
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	columnType: func(t schema.Type) string {
		switch t {
		case schema.TypeText:
			return "TEXT NOT NULL"
		case schema.TypeTimestamp:
			return "TIMESTAMPTZ NOT NULL DEFAULT NOW()"
		case schema.TypeUByte:
			return "SMALLINT NOT NULL DEFAULT 0"
		case schema.TypeInt32:
			return "INTEGER"
		case schema.TypeBlob:
			return "BYTEA NOT NULL DEFAULT ''::bytea"
		default:
			return "TEXT"
		}
	},
}

var sqliteDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("?%d", n) },
	columnType: func(t schema.Type) string {
		switch t {
		case schema.TypeText:
			return "TEXT NOT NULL"
		case schema.TypeTimestamp:
			return "TEXT NOT NULL"
		case schema.TypeUByte, schema.TypeInt32:
			return "INTEGER NOT NULL DEFAULT 0"
		case schema.TypeBlob:
			return "BLOB"
		default:
			return "TEXT"
		}
	},
}

// statements holds the SQL generated once from the schema for one table.
type statements struct {
	table   *schema.Table
	columns []string // saved columns in schema order

	createTable  string
	dropTable    string
	lookup       string
	findByPrefix string
	insert       string
	upsert       string
	save         string
	deleteByName string
	rename       string
	patchFlags   string
	patchTimes   string
}

func newStatements(d dialect, tableName string, s *schema.Schema) (*statements, error) {
	const op = "repository.newStatements"

	keys := s.Columns(schema.Keys)
	table := schema.NewTable(tableName, s).WithPrimaryKey(keys...)

	createTable, err := table.Definition(d.columnType, pq.QuoteIdentifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st := &statements{
		table:       table,
		columns:     s.Columns(schema.Insertable),
		createTable: createTable,
	}

	q := pq.QuoteIdentifier
	tbl := q(tableName)
	name := q(mapper.ColumnName)

	quoted := make([]string, len(st.columns))
	holders := make([]string, len(st.columns))
	for i, c := range st.columns {
		quoted[i] = q(c)
		holders[i] = d.placeholder(i + 1)
	}
	selectList := strings.Join(quoted, ", ")

	var sets, excluded []string
	n := 1
	for _, c := range s.Columns(schema.Updatable) {
		n++
		sets = append(sets, fmt.Sprintf("%s = %s", q(c), d.placeholder(n)))
		excluded = append(excluded, fmt.Sprintf("%s = excluded.%s", q(c), q(c)))
	}

	st.dropTable = fmt.Sprintf("DROP TABLE IF EXISTS %s", tbl)
	st.lookup = fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", selectList, tbl, name, d.placeholder(1))
	st.findByPrefix = fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s >= %s AND %s LIKE %s ESCAPE '%c' ORDER BY %s",
		selectList, tbl, name, d.placeholder(1), name, d.placeholder(2), likeEscape, name)
	st.insert = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		tbl, selectList, strings.Join(holders, ", "), name)
	st.upsert = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tbl, selectList, strings.Join(holders, ", "), name, strings.Join(excluded, ", "))
	st.save = fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", tbl, strings.Join(sets, ", "), name, d.placeholder(1))
	st.deleteByName = fmt.Sprintf("DELETE FROM %s WHERE %s = %s", tbl, name, d.placeholder(1))
	st.rename = fmt.Sprintf(
		"UPDATE %s SET %s = %s WHERE %s = %s AND NOT EXISTS (SELECT 1 FROM %s WHERE %s = %s)",
		tbl, name, d.placeholder(2), name, d.placeholder(1), tbl, name, d.placeholder(2))
	st.patchFlags = fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		tbl, q(mapper.ColumnFlags), d.placeholder(2), name, d.placeholder(1))
	st.patchTimes = fmt.Sprintf(
		"UPDATE %s SET %s = COALESCE(%s, %s), %s = COALESCE(%s, %s), %s = COALESCE(%s, %s) WHERE %s = %s",
		tbl,
		q(mapper.ColumnCreationTime), d.placeholder(2), q(mapper.ColumnCreationTime),
		q(mapper.ColumnAccessTime), d.placeholder(3), q(mapper.ColumnAccessTime),
		q(mapper.ColumnLastModifyTime), d.placeholder(4), q(mapper.ColumnLastModifyTime),
		name, d.placeholder(1))

	return st, nil
}

// saveArgs orders values as the save statement expects: key first, then
// the updatable columns.
func saveArgs(s *schema.Schema, values map[string]any) []any {
	args := []any{values[mapper.ColumnName]}
	for _, c := range s.Columns(schema.Updatable) {
		args = append(args, values[c])
	}
	return args
}

// likePattern converts a '*'/'?' wildcard pattern into a LIKE pattern
// escaped with likeEscape.
func likePattern(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', likeEscape:
			b.WriteRune(likeEscape)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
