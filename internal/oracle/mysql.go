package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"adaptql/internal/types"
)

// MySQLOracle runs a SQL statement against a real MySQL instance and
// decodes its result into Rows, for use as the independent reference in
// testable property 1 (SPEC_FULL.md §8 P8) — going one step further than
// comparing against this repository's own non-adaptive executor by
// using a genuinely separate SQL engine.
type MySQLOracle struct {
	db *sql.DB
}

// Connect opens a connection to dsn, adapted from the teacher's
// Applier.Connect (internal/apply/apply_connector.go): open, then ping
// to fail fast on a bad DSN rather than on the first query.
func Connect(ctx context.Context, dsn string) (*MySQLOracle, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("oracle: open mysql connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("oracle: ping mysql: %w; additionally failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("oracle: ping mysql: %w", err)
	}
	return &MySQLOracle{db: db}, nil
}

// Close releases the underlying connection pool.
func (o *MySQLOracle) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

// Query runs sqlText and decodes every returned row into a Row of
// types.Value, using kinds to interpret each column (query result sets
// carry no catalog of their own, so the caller supplies the expected SQL
// type per column position, exactly as the engine's own typed columns
// are already known ahead of execution).
func (o *MySQLOracle) Query(ctx context.Context, sqlText string, kinds []types.Kind) ([]Row, error) {
	rows, err := o.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("oracle: query: %w", err)
	}
	defer rows.Close()

	var out []Row
	scanBuf := make([]sql.NullString, len(kinds))
	scanArgs := make([]any, len(kinds))
	for i := range scanBuf {
		scanArgs[i] = &scanBuf[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("oracle: scan row: %w", err)
		}
		row := make(Row, len(kinds))
		for i, k := range kinds {
			v, err := decode(k, scanBuf[i])
			if err != nil {
				return nil, fmt.Errorf("oracle: decode column %d: %w", i, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("oracle: iterate rows: %w", err)
	}
	return out, nil
}

func decode(k types.Kind, s sql.NullString) (types.Value, error) {
	if !s.Valid {
		return types.NullValue(k), nil
	}
	switch k {
	case types.Boolean:
		return types.BoolValue(s.String == "1" || s.String == "true"), nil
	case types.SmallInt:
		var v int64
		if _, err := fmt.Sscan(s.String, &v); err != nil {
			return types.Value{}, err
		}
		return types.SmallIntValue(int16(v)), nil
	case types.Int:
		var v int64
		if _, err := fmt.Sscan(s.String, &v); err != nil {
			return types.Value{}, err
		}
		return types.IntValue(int32(v)), nil
	case types.BigInt:
		var v int64
		if _, err := fmt.Sscan(s.String, &v); err != nil {
			return types.Value{}, err
		}
		return types.BigIntValue(v), nil
	case types.Real:
		var v float64
		if _, err := fmt.Sscan(s.String, &v); err != nil {
			return types.Value{}, err
		}
		return types.RealValue(v), nil
	case types.Date:
		t, err := time.Parse("2006-01-02", s.String)
		if err != nil {
			return types.Value{}, err
		}
		return types.DateValue(t.UnixMilli()), nil
	case types.Text, types.Enum:
		return types.TextValue(s.String), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported oracle decode kind %v", k)
	}
}
