package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	errEmptyTable    = errors.New("table name is empty")
	errEmptyFunction = errors.New("function name is empty")
)

// Filter — условие равенства колонки значению.
type Filter struct {
	Column string
	Value  any
}

// Eq возвращает фильтр column = value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Query описывает выборку из таблицы. Пустой Columns означает все колонки.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
}

func NewQuery(table string, columns ...string) Query {
	return Query{Table: table, Columns: columns}
}

// Where добавляет фильтр к запросу.
func (q Query) Where(f ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), f...)
	return q
}

// Param — именованный аргумент хранимой функции.
type Param struct {
	Name  string
	Value any
}

// Call описывает вызов хранимой функции: SELECT cols FROM fn(name => $n, ...).
type Call struct {
	Function string
	Params   []Param
	Columns  []string
}

func NewCall(function string, params ...Param) Call {
	return Call{Function: function, Params: params}
}

func (q Query) sql() (string, []any, error) {
	if strings.TrimSpace(q.Table) == "" {
		return "", nil, errEmptyTable
	}

	var (
		b    strings.Builder
		args = make([]any, 0, len(q.Filters))
	)

	fmt.Fprintf(&b, "SELECT %s FROM %s", columnList(q.Columns), QuoteName(q.Table))
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s = $%d", pgx.Identifier{f.Column}.Sanitize(), len(args))
	}

	return b.String(), args, nil
}

func (c Call) sql() (string, []any, error) {
	if strings.TrimSpace(c.Function) == "" {
		return "", nil, errEmptyFunction
	}

	named := make([]string, 0, len(c.Params))
	args := make([]any, 0, len(c.Params))
	for _, p := range c.Params {
		args = append(args, p.Value)
		named = append(named, fmt.Sprintf("%s => $%d", pgx.Identifier{p.Name}.Sanitize(), len(args)))
	}

	return fmt.Sprintf(
		"SELECT %s FROM %s(%s)",
		columnList(c.Columns),
		QuoteName(c.Function),
		strings.Join(named, ", "),
	), args, nil
}

// QuoteName экранирует имя вида schema.name.
func QuoteName(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func columnList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	return strings.Join(quoted, ", ")
}
