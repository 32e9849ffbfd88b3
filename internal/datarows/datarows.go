// Package datarows adapts database/sql result sets into DataTable objects
// the evaluator can enumerate. A DataTable has a rows Array of DataRow
// objects, a columns Array of column names and a row count.
package datarows

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/evaluator"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const memoryDSN = ":memory:"

// Open opens and pings the SQLite database at path. An in-memory database is
// confined to a single connection so every query sees the same data.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, evaluator.WrapCustom(err, "opening "+path)
	}
	if path == memoryDSN {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, evaluator.WrapCustom(err, "opening "+path)
	}
	return db, nil
}

// Query runs query with args converted by HostArg and returns the result set
// as a DataTable.
func Query(ctx context.Context, db *sql.DB, query string, args ...evaluator.Value) (*evaluator.Object, error) {
	params := make([]any, len(args))
	for i, a := range args {
		p, err := HostArg(a)
		if err != nil {
			return nil, fmt.Errorf("query parameter %d: %w", i+1, err)
		}
		params[i] = p
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, evaluator.WrapCustom(err, "query failed")
	}
	defer rows.Close()
	return FromRows(rows)
}

// FromRows drains rows into a DataTable. It does not close rows.
func FromRows(rows *sql.Rows) (*evaluator.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, evaluator.WrapCustom(err, "reading columns")
	}

	var records []evaluator.Value
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, evaluator.WrapCustom(err, "reading row")
		}

		row := evaluator.NewObject(config.DataRowClassName)
		for i, col := range columns {
			row.Set(col, FromHost(values[i]))
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, evaluator.WrapCustom(err, "reading rows")
	}

	return NewTable(columns, records), nil
}

// NewTable builds a DataTable from column names and DataRow objects.
func NewTable(columns []string, rows []evaluator.Value) *evaluator.Object {
	names := make([]evaluator.Value, len(columns))
	for i, c := range columns {
		names[i] = &evaluator.String{Value: c}
	}
	if rows == nil {
		rows = []evaluator.Value{}
	}

	table := evaluator.NewObject(config.DataTableClassName)
	table.Set(config.ColumnsField, &evaluator.Array{Elements: names})
	table.Set(config.RowsField, &evaluator.Array{Elements: rows})
	table.Set(config.CountField, &evaluator.Integer{Value: int32(len(rows))})
	return table
}

// HostArg converts a runtime value to a database/sql parameter.
func HostArg(v evaluator.Value) (any, error) {
	switch v := v.(type) {
	case nil, *evaluator.Nothing:
		return nil, nil
	case *evaluator.Byte:
		return int64(v.Value), nil
	case *evaluator.Integer:
		return int64(v.Value), nil
	case *evaluator.Long:
		return v.Value, nil
	case *evaluator.Single:
		return float64(v.Value), nil
	case *evaluator.Double:
		return v.Value, nil
	case *evaluator.Boolean:
		return v.Value, nil
	case *evaluator.String:
		return v.Value, nil
	case *evaluator.Char:
		return string(v.Value), nil
	case *evaluator.Date:
		t, ok := evaluator.DateToTime(v.Value)
		if !ok {
			return nil, evaluator.NewCustom("Date value %v is out of range", v.Value)
		}
		return t, nil
	}
	return nil, evaluator.NewTypeError("scalar", v)
}

// FromHost converts a scanned column value to a runtime value. SQLite
// integers become Integer when they fit and Long otherwise.
func FromHost(x any) evaluator.Value {
	switch x := x.(type) {
	case nil:
		return evaluator.NOTHING
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return &evaluator.Integer{Value: int32(x)}
		}
		return &evaluator.Long{Value: x}
	case float64:
		return &evaluator.Double{Value: x}
	case bool:
		if x {
			return evaluator.TRUE
		}
		return evaluator.FALSE
	case string:
		return &evaluator.String{Value: x}
	case []byte:
		return &evaluator.String{Value: string(x)}
	case time.Time:
		return &evaluator.Date{Value: evaluator.DateFromTime(x)}
	}
	return &evaluator.String{Value: fmt.Sprint(x)}
}
