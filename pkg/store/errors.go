package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// CodeNoRows — код ошибки, когда SingleInto получил не ровно одну строку.
	CodeNoRows = "PGRST116"

	noRowsMessage = "JSON object requested, multiple (or no) rows returned"
)

// ErrNoRows — запрос одной строки вернул ноль или несколько строк.
var ErrNoRows = errors.New(noRowsMessage)

// Error — ошибка хранилища. Message пригоден для передачи клиенту как есть.
type Error struct {
	Op      string
	Message string
	Code    string
	Err     error
}

func (se *Error) Error() string {
	return se.Op + ": " + se.Message
}

func (se *Error) Unwrap() error {
	return se.Err
}

func newError(op string, err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, pgx.ErrTooManyRows) {
		return &Error{Op: op, Message: noRowsMessage, Code: CodeNoRows, Err: errors.Join(ErrNoRows, err)}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Op: op, Message: pgErr.Message, Code: pgErr.Code, Err: err}
	}

	return &Error{Op: op, Message: err.Error(), Err: err}
}

// Message возвращает текст ошибки хранилища без префиксов обёрток.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}

	return err.Error()
}

// IsNoRows сообщает, что ошибка вызвана отсутствием (или избытком) строк.
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}
