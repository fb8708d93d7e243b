package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
)

// QueryParams narrows down a query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword.
	// Example: "Cause = ? AND Tick > ?"
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of rows to return. 0 means no limit.
	Limit int

	// Offset is the number of rows to skip.
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	OrderBy string
}

// A Reader queries a journal.
type Reader struct {
	*sql.DB
}

// Open opens an existing journal.
func Open(filename string) (*Reader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", filename, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a Reader on an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{DB: db}
}

// Evictions returns eviction rows and the number of rows matching params
// regardless of Limit and Offset.
func (r *Reader) Evictions(
	ctx context.Context,
	params QueryParams,
) ([]EvictionRow, int, error) {
	return query[EvictionRow](ctx, r.DB, TableEvictions, params)
}

// Sweeps returns sweep rows.
func (r *Reader) Sweeps(
	ctx context.Context,
	params QueryParams,
) ([]SweepRow, int, error) {
	return query[SweepRow](ctx, r.DB, TableSweeps, params)
}

// ExecInfo returns the properties of the recorded run.
func (r *Reader) ExecInfo(ctx context.Context) ([]ExecInfo, error) {
	rows, _, err := query[ExecInfo](ctx, r.DB, TableExecInfo, QueryParams{})
	return rows, err
}

// CauseCount is the number of evictions with one cause.
type CauseCount struct {
	Cause string
	Count int
}

// EvictionsByCause counts evictions per cause, most frequent first.
func (r *Reader) EvictionsByCause(ctx context.Context) ([]CauseCount, error) {
	rows, err := r.QueryContext(ctx,
		"SELECT Cause, COUNT(*) AS n FROM "+TableEvictions+
			" GROUP BY Cause ORDER BY n DESC, Cause")
	if err != nil {
		return nil, fmt.Errorf("counting evictions: %w", err)
	}
	defer rows.Close()

	var counts []CauseCount

	for rows.Next() {
		var c CauseCount
		if err := rows.Scan(&c.Cause, &c.Count); err != nil {
			return nil, fmt.Errorf("counting evictions: %w", err)
		}

		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func query[T any](
	ctx context.Context,
	db *sql.DB,
	tableName string,
	params QueryParams,
) ([]T, int, error) {
	q := "SELECT * FROM " + tableName

	if params.Where != "" {
		q += " WHERE " + params.Where
	}

	if params.OrderBy != "" {
		q += " ORDER BY " + params.OrderBy
	}

	if params.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			q += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	totalCount, err := queryTotalCount(ctx, db, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx, q, params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	results, err := scanRows[T](rows)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}

	return results, totalCount, nil
}

func queryTotalCount(
	ctx context.Context,
	db *sql.DB,
	tableName string,
	params QueryParams,
) (int, error) {
	var totalCount int

	countQuery := "SELECT COUNT(*) FROM " + tableName
	if params.Where != "" {
		countQuery += " WHERE " + params.Where
	}

	err := db.QueryRowContext(ctx, countQuery, params.Args...).Scan(&totalCount)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	return totalCount, nil
}

// scanRows maps columns to the struct fields of the same name. Unknown
// columns are skipped.
func scanRows[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	structType := reflect.TypeOf((*T)(nil)).Elem()
	fieldMap := make(map[string]int)

	for i := 0; i < structType.NumField(); i++ {
		fieldMap[structType.Field(i).Name] = i
	}

	var results []T

	for rows.Next() {
		var v T

		structVal := reflect.ValueOf(&v).Elem()
		scanTargets := make([]any, len(columns))

		for i, colName := range columns {
			if fieldIdx, ok := fieldMap[colName]; ok {
				scanTargets[i] = structVal.Field(fieldIdx).Addr().Interface()
			} else {
				var placeholder any
				scanTargets[i] = &placeholder
			}
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		results = append(results, v)
	}

	return results, rows.Err()
}
