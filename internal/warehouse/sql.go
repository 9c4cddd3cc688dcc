package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"econ-predictor/internal/common"
	"econ-predictor/internal/storage"
)

// SQLSource reads the training table from a warehouse view or table.
type SQLSource struct {
	DB    *sql.DB
	Kind  string
	Table string
}

// NewSQLSource opens the warehouse for kind ("mysql" or "sqlite").
func NewSQLSource(kind, dsn, table string) (*SQLSource, error) {
	if !storage.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := storage.OpenSQL(kind, dsn)
	if err != nil {
		return nil, err
	}
	return &SQLSource{DB: db, Kind: kind, Table: table}, nil
}

func (s *SQLSource) Describe() string { return s.Kind + ":" + s.Table }

func (s *SQLSource) Load(ctx context.Context) ([]RawRecord, error) {
	if err := s.DB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("warehouse unreachable: %w", err)
	}

	query := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s",
		common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth, common.ColumnStatus, s.Table)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var records []RawRecord
	for rows.Next() {
		var inflation, earnings, growth sql.NullFloat64
		var status sql.NullString
		if err := rows.Scan(&inflation, &earnings, &growth, &status); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Table, err)
		}

		records = append(records, RawRecord{
			Inflation: nullFloat(inflation),
			Earnings:  nullFloat(earnings),
			Growth:    nullFloat(growth),
			Status:    nullString(status),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.Table, err)
	}
	return records, nil
}

// Close closes the warehouse connection.
func (s *SQLSource) Close() error {
	return s.DB.Close()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
