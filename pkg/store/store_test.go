package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/product-recommender/pkg/store/storetest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySQL(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "all columns",
			query:    NewQuery("recproducts"),
			wantSQL:  `SELECT * FROM "recproducts"`,
			wantArgs: []any{},
		},
		{
			name:     "columns and filter",
			query:    NewQuery("recproducts", "embedding").Where(Eq("id", "1")),
			wantSQL:  `SELECT "embedding" FROM "recproducts" WHERE "id" = $1`,
			wantArgs: []any{"1"},
		},
		{
			name:     "schema and two filters",
			query:    NewQuery("public.recproducts", "id", "name").Where(Eq("id", 1), Eq("name", "x")),
			wantSQL:  `SELECT "id", "name" FROM "public"."recproducts" WHERE "id" = $1 AND "name" = $2`,
			wantArgs: []any{1, "x"},
		},
		{
			name:     "quotes are escaped",
			query:    NewQuery(`we"ird`),
			wantSQL:  `SELECT * FROM "we""ird"`,
			wantArgs: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.sql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestQuerySQL_EmptyTable(t *testing.T) {
	_, _, err := NewQuery(" ").sql()
	assert.ErrorIs(t, err, errEmptyTable)
}

func TestWhere_DoesNotShareFilters(t *testing.T) {
	base := NewQuery("t").Where(Eq("a", 1))
	q1 := base.Where(Eq("b", 2))
	q2 := base.Where(Eq("c", 3))

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "b", q1.Filters[1].Column)
	assert.Equal(t, "c", q2.Filters[1].Column)
}

func TestCallSQL(t *testing.T) {
	call := NewCall("rec_match_products",
		Param{Name: "query_embedding", Value: "[1,2]"},
		Param{Name: "match_threshold", Value: 0.78},
		Param{Name: "match_count", Value: 5},
	)
	call.Columns = []string{"id", "name"}

	sql, args, err := call.sql()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "name" FROM "rec_match_products"("query_embedding" => $1, "match_threshold" => $2, "match_count" => $3)`,
		sql,
	)
	assert.Equal(t, []any{"[1,2]", 0.78, 5}, args)

	_, _, err = NewCall("").sql()
	assert.ErrorIs(t, err, errEmptyFunction)
}

type item struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Note string `db:"-"`
}

func TestSelectInto(t *testing.T) {
	q := storetest.NewQuerier().Returns(storetest.NewRows([]string{"id", "name"}, []any{int64(1), "a"}, []any{int64(2), "b"}))
	c := NewClient(q)

	items, err := SelectInto[item](context.Background(), c, NewQuery("recproducts", "id", "name"))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, items)
	assert.Equal(t, `SELECT "id", "name" FROM "recproducts"`, q.LastCall().SQL)
}

func TestSingleInto(t *testing.T) {
	t.Run("one row", func(t *testing.T) {
		q := storetest.NewQuerier().Returns(storetest.NewRows([]string{"id", "name"}, []any{int64(1), "a"}))

		got, err := SingleInto[item](context.Background(), NewClient(q), NewQuery("recproducts", "id", "name").Where(Eq("id", "1")))
		require.NoError(t, err)
		assert.Equal(t, item{ID: 1, Name: "a"}, got)
		assert.Equal(t, []any{"1"}, q.LastCall().Args)
	})

	t.Run("no rows", func(t *testing.T) {
		c := NewClient(storetest.NewQuerier().Returns(storetest.NewRows([]string{"id", "name"})))

		_, err := SingleInto[item](context.Background(), c, NewQuery("recproducts", "id", "name"))
		require.Error(t, err)
		assert.True(t, IsNoRows(err))
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.Equal(t, "JSON object requested, multiple (or no) rows returned", Message(err))

		var se *Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeNoRows, se.Code)
	})

	t.Run("many rows", func(t *testing.T) {
		c := NewClient(storetest.NewQuerier().Returns(storetest.NewRows([]string{"id", "name"}, []any{int64(1), "a"}, []any{int64(2), "b"})))

		_, err := SingleInto[item](context.Background(), c, NewQuery("recproducts", "id", "name"))
		assert.True(t, IsNoRows(err))
	})
}

func TestRPCInto_PgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42883", Message: "function rec_match_products does not exist"}
	c := NewClient(storetest.NewQuerier().Fails(pgErr))

	_, err := RPCInto[item](context.Background(), c, NewCall("rec_match_products"))
	require.Error(t, err)
	assert.Equal(t, "function rec_match_products does not exist", Message(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "42883", se.Code)
	assert.Equal(t, "RPCInto", se.Op)
	assert.False(t, IsNoRows(err))
}

func TestRPCInto(t *testing.T) {
	c := NewClient(storetest.NewQuerier().Returns(storetest.NewRows([]string{"id", "name"}, []any{int64(7), "seven"})))

	items, err := RPCInto[item](context.Background(), c, NewCall("fn"))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 7, Name: "seven"}}, items)
}

func TestClient_Ping(t *testing.T) {
	q := storetest.NewQuerier()
	q.PingErr = errors.New("connection refused")
	c := NewClient(q)

	err := c.Ping(context.Background())
	assert.Equal(t, "connection refused", Message(err))
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
