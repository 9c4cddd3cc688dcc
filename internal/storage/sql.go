package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"econ-predictor/internal/common"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is safe to splice into SQL as a
// (optionally schema-qualified) table name.
func ValidIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// OpenSQL opens a database for a configured kind ("mysql" or "sqlite").
func OpenSQL(kind, dsn string) (*sql.DB, error) {
	var driver string
	switch kind {
	case common.KindMySQL:
		driver = "mysql"
	case common.KindSQLite:
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported sql kind %q", kind)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", kind, err)
	}
	return db, nil
}

// SQLSink appends prediction records to a warehouse table.
type SQLSink struct {
	db    *sql.DB
	kind  string
	table string
}

// NewSQLSink wraps an open database. The table is created by EnsureTable.
func NewSQLSink(db *sql.DB, kind, table string) (*SQLSink, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if kind != common.KindMySQL && kind != common.KindSQLite {
		return nil, fmt.Errorf("unsupported sql kind %q", kind)
	}
	return &SQLSink{db: db, kind: kind, table: table}, nil
}

// EnsureTable creates the predictions table if it does not exist.
func (s *SQLSink) EnsureTable(ctx context.Context) error {
	var query string
	if s.kind == common.KindMySQL {
		query = fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		Record_ID CHAR(36) NOT NULL PRIMARY KEY,
		Timestamp DATETIME(6) NOT NULL,
		In_Inflation DOUBLE NOT NULL,
		In_Earnings DOUBLE NOT NULL,
		In_Growth DOUBLE NOT NULL,
		Model_Prediction VARCHAR(128) NOT NULL,
		Model_ID VARCHAR(128) NOT NULL,
		INDEX idx_model_time (Model_ID, Timestamp)
	);`, s.table)
	} else {
		query = fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		Record_ID TEXT NOT NULL PRIMARY KEY,
		Timestamp DATETIME NOT NULL,
		In_Inflation REAL NOT NULL,
		In_Earnings REAL NOT NULL,
		In_Growth REAL NOT NULL,
		Model_Prediction TEXT NOT NULL,
		Model_ID TEXT NOT NULL
	);`, s.table)
	}

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// AppendPrediction inserts a record. A repeated Record_ID is ignored; any
// other constraint failure is returned.
func (s *SQLSink) AppendPrediction(ctx context.Context, record PredictionRecord) error {
	onConflict := "ON CONFLICT(Record_ID) DO NOTHING"
	if s.kind == common.KindMySQL {
		onConflict = "ON DUPLICATE KEY UPDATE Record_ID = Record_ID"
	}
	query := fmt.Sprintf(`
	INSERT INTO %s
		(Record_ID, Timestamp, In_Inflation, In_Earnings, In_Growth, Model_Prediction, Model_ID)
	VALUES
		(?, ?, ?, ?, ?, ?, ?)
	%s;`, s.table, onConflict)

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Timestamp,
		record.Inflation,
		record.Earnings,
		record.Growth,
		record.Prediction,
		record.ModelID,
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", record.ID, err)
	}
	return nil
}

// CountPredictions returns the number of rows in the table.
func (s *SQLSink) CountPredictions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
