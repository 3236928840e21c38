package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// poolMock implements postgres.PgxPool with testify expectations.
type poolMock struct{ mock.Mock }

func (p *poolMock) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := p.Called(ctx, sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (p *poolMock) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.Called(ctx, sql, args).Get(0).(pgx.Row)
}

func (p *poolMock) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := p.Called(ctx, sql, args)
	rows, _ := a.Get(0).(pgx.Rows)
	return rows, a.Error(1)
}

// assign copies vals into the scan destinations. Types must match exactly.
func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i := range dest {
		if vals[i] == nil {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(vals[i]))
	}
	return nil
}

// rowStub implements pgx.Row.
type rowStub struct {
	vals []any
	err  error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

// rowsStub implements pgx.Rows over fixed values.
type rowsStub struct {
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *rowsStub) Close()                                       { r.closed = true }
func (r *rowsStub) Err() error                                   { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rowsStub) RawValues() [][]byte                          { return nil }
func (r *rowsStub) Conn() *pgx.Conn                              { return nil }

func (r *rowsStub) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *rowsStub) Scan(dest ...any) error {
	if r.i == 0 || r.i > len(r.data) {
		return errors.New("scan without row")
	}
	return assign(dest, r.data[r.i-1])
}

func (r *rowsStub) Values() ([]any, error) {
	if r.i == 0 || r.i > len(r.data) {
		return nil, errors.New("values without row")
	}
	return r.data[r.i-1], nil
}
