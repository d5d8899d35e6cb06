// Package store — клиент хранилища данных: табличные выборки и вызовы хранимых процедур
// поверх пула соединений PostgreSQL. Каждая ошибка возвращается значением *Error.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier — минимальный набор методов пула, нужный клиенту. Его реализует *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Client выполняет запросы к хранилищу. Состояния между вызовами не хранит.
type Client struct {
	db Querier
}

func NewClient(db Querier) *Client {
	return &Client{db: db}
}

// Ping проверяет доступность хранилища.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.Ping(ctx); err != nil {
		return newError("Client.Ping", err)
	}

	return nil
}

// SelectInto возвращает все строки таблицы, удовлетворяющие фильтрам,
// сканируя их в структуры T по тегам db.
func SelectInto[T any](ctx context.Context, c *Client, q Query) ([]T, error) {
	const op = "SelectInto"

	rows, err := c.query(ctx, op, q)
	if err != nil {
		return nil, err
	}

	res, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, newError(op, err)
	}

	return res, nil
}

// SingleInto возвращает ровно одну строку. Отсутствие строки или несколько строк — ошибка ErrNoRows.
func SingleInto[T any](ctx context.Context, c *Client, q Query) (T, error) {
	const op = "SingleInto"

	var zero T
	rows, err := c.query(ctx, op, q)
	if err != nil {
		return zero, err
	}

	res, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return zero, newError(op, err)
	}

	return res, nil
}

// RPCInto вызывает хранимую функцию с именованными аргументами и сканирует её строки в структуры T.
func RPCInto[T any](ctx context.Context, c *Client, call Call) ([]T, error) {
	const op = "RPCInto"

	rows, err := c.query(ctx, op, call)
	if err != nil {
		return nil, err
	}

	res, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, newError(op, err)
	}

	return res, nil
}

type statement interface {
	sql() (string, []any, error)
}

func (c *Client) query(ctx context.Context, op string, st statement) (pgx.Rows, error) {
	sql, args, err := st.sql()
	if err != nil {
		return nil, newError(op, err)
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, newError(op, err)
	}

	return rows, nil
}
