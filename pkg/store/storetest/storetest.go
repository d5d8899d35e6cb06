// Package storetest содержит фейковый пул соединений для тестов кода поверх store.Client.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Rows — результат запроса в памяти. Реализует pgx.Rows.
type Rows struct {
	columns []string
	data    [][]any
	idx     int
	closed  bool
}

func NewRows(columns []string, data ...[]any) *Rows {
	return &Rows{columns: columns, data: data, idx: -1}
}

func (r *Rows) Close()                        { r.closed = true }
func (r *Rows) Err() error                    { return nil }
func (r *Rows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *Rows) RawValues() [][]byte           { return nil }
func (r *Rows) Conn() *pgx.Conn               { return nil }

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *Rows) Values() ([]any, error) {
	return r.data[r.idx], nil
}

// Scan присваивает значения текущей строки так же, как pgx выбирает план сканирования:
// int64 уходит в pgtype.Int64Scanner, строки и NULL — в pgtype.TextScanner,
// остальное — в sql.Scanner или присваивается напрямую.
func (r *Rows) Scan(dest ...any) error {
	if len(dest) == 1 {
		if rs, ok := dest[0].(pgx.RowScanner); ok {
			return rs.ScanRow(r)
		}
	}

	row := r.data[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d targets for %d values", len(dest), len(row))
	}

	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("scan column %q: %w", r.columns[i], err)
		}
	}

	return nil
}

func assign(dst, src any) error {
	if s, ok := dst.(pgtype.Int64Scanner); ok {
		if n, isInt := src.(int64); isInt {
			return s.ScanInt64(pgtype.Int8{Int64: n, Valid: true})
		}
	}

	if s, ok := dst.(pgtype.TextScanner); ok {
		switch v := src.(type) {
		case string:
			return s.ScanText(pgtype.Text{String: v, Valid: true})
		case nil:
			return s.ScanText(pgtype.Text{})
		}
	}

	dv := reflect.ValueOf(dst).Elem()
	if src == nil {
		dv.Set(reflect.Zero(dv.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dv.Type()) {
		dv.Set(sv)
		return nil
	}

	if s, ok := dst.(sql.Scanner); ok {
		return s.Scan(src)
	}

	if dv.Kind() == reflect.Pointer {
		elem := reflect.New(dv.Type().Elem())
		if err := assign(elem.Interface(), src); err != nil {
			return err
		}
		dv.Set(elem)
		return nil
	}

	if sv.Type().ConvertibleTo(dv.Type()) {
		dv.Set(sv.Convert(dv.Type()))
		return nil
	}

	return fmt.Errorf("can not assign %T to %s", src, dv.Type())
}

// Call — записанный вызов Query.
type Call struct {
	SQL  string
	Args []any
}

// Querier отдаёт заранее заданные результаты по очереди и запоминает запросы.
type Querier struct {
	mu      sync.Mutex
	results []result
	calls   []Call
	PingErr error
}

type result struct {
	rows pgx.Rows
	err  error
}

func NewQuerier() *Querier {
	return &Querier{}
}

// Returns добавляет результат следующего запроса.
func (q *Querier) Returns(rows pgx.Rows) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results = append(q.results, result{rows: rows})
	return q
}

// Fails добавляет ошибку следующего запроса.
func (q *Querier) Fails(err error) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results = append(q.results, result{err: err})
	return q
}

func (q *Querier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.calls = append(q.calls, Call{SQL: sql, Args: args})
	if len(q.results) == 0 {
		return nil, fmt.Errorf("storetest: unexpected query %q", sql)
	}

	res := q.results[0]
	q.results = q.results[1:]
	return res.rows, res.err
}

func (q *Querier) Ping(context.Context) error {
	return q.PingErr
}

// Calls возвращает выполненные запросы по порядку.
func (q *Querier) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Call(nil), q.calls...)
}

// LastCall возвращает последний запрос.
func (q *Querier) LastCall() Call {
	calls := q.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}
