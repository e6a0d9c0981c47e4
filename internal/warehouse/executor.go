// Package warehouse executes normalized queries against the sales warehouse.
// The production driver speaks to a Databricks SQL endpoint; a DuckDB driver
// runs the same queries against a local database file for offline work.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/databricks/databricks-sql-go" // Databricks SQL driver
	_ "github.com/marcboeker/go-duckdb"         // DuckDB driver

	"github.com/rolld/sales-assistant/internal/config"
	"github.com/rolld/sales-assistant/internal/dialect"
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/logging"
)

// legacyTimeParserStmt keeps strftime-style date parsing working on Spark 3
// warehouses. DuckDB rejects Spark session settings, so it is only issued on
// the databricks driver.
const legacyTimeParserStmt = "SET spark.sql.legacy.timeParserPolicy=LEGACY;"

// ResultSet holds the rows a query produced together with typed column
// metadata from the driver.
type ResultSet struct {
	Columns []string
	Types   []string
	Rows    [][]interface{}
}

// RowCount returns the number of rows.
func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}

// numericTypes covers the database type names both drivers report for
// numeric columns.
var numericTypes = map[string]bool{
	"INT": true, "INTEGER": true, "BIGINT": true, "SMALLINT": true, "TINYINT": true,
	"FLOAT": true, "DOUBLE": true, "REAL": true, "DECIMAL": true, "NUMERIC": true,
	"HUGEINT": true, "UINTEGER": true, "UBIGINT": true,
}

// IsNumericColumn reports whether the column at index i carries a numeric
// database type.
func (rs *ResultSet) IsNumericColumn(i int) bool {
	if i < 0 || i >= len(rs.Types) {
		return false
	}

	base := rs.Types[i]
	if idx := strings.Index(base, "("); idx >= 0 {
		base = base[:idx]
	}

	return numericTypes[strings.ToUpper(strings.TrimSpace(base))]
}

// Executor runs a normalized query and returns its result set.
type Executor interface {
	Execute(ctx context.Context, sqlText string) (*ResultSet, error)
	Close() error
}

// DB is the database/sql-backed Executor. The connection pool is opened
// lazily, cached for the life of the process, and re-verified with a ping
// before each reuse.
type DB struct {
	cfg     config.WarehouseConfig
	timeout time.Duration

	mu sync.Mutex
	db *sql.DB
}

// Open creates an executor for the configured driver. No connection is
// attempted until the first query.
func Open(cfg config.WarehouseConfig) (*DB, error) {
	timeout, err := time.ParseDuration(cfg.QueryTimeout)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrTypeConfig,
			"invalid warehouse query timeout %q", cfg.QueryTimeout)
	}

	switch strings.ToLower(cfg.Driver) {
	case "databricks", "duckdb":
	default:
		return nil, apperrors.Newf(apperrors.ErrTypeConfig,
			"unsupported warehouse driver: %s", cfg.Driver)
	}

	return &DB{cfg: cfg, timeout: timeout}, nil
}

// dsn builds the driver-specific connection string.
func (d *DB) dsn() (driver, dsn string, err error) {
	switch strings.ToLower(d.cfg.Driver) {
	case "databricks":
		var missing []string

		if d.cfg.ServerHostname == "" {
			missing = append(missing, "DATABRICKS_SERVER_HOSTNAME")
		}

		if d.cfg.HTTPPath == "" {
			missing = append(missing, "DATABRICKS_HTTP_PATH")
		}

		if d.cfg.AccessToken == "" {
			missing = append(missing, "DATABRICKS_ACCESS_TOKEN")
		}

		if len(missing) > 0 {
			return "", "", apperrors.Newf(apperrors.ErrTypeQueryExecution,
				"warehouse credentials are not configured").
				WithDetail(strings.Join(missing, ", ") + " not set").
				WithSuggestion("Set the missing variables in the environment or config file").
				WithSuggestion("Run 'sales-assistant check' to verify the configuration")
		}

		return "databricks", fmt.Sprintf("token:%s@%s:443%s",
			d.cfg.AccessToken, d.cfg.ServerHostname, d.cfg.HTTPPath), nil
	case "duckdb":
		if dir := filepath.Dir(d.cfg.LocalPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		return "duckdb", d.cfg.LocalPath, nil
	default:
		return "", "", apperrors.Newf(apperrors.ErrTypeQueryExecution,
			"unsupported warehouse driver: %s", d.cfg.Driver)
	}
}

// conn returns the cached pool, opening or reopening it as needed. The ping
// catches warehouses that dropped the session since the last query.
func (d *DB) conn(ctx context.Context) (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		if err := d.db.PingContext(ctx); err == nil {
			return d.db, nil
		}

		logging.Warn("cached warehouse connection failed ping, reconnecting")

		_ = d.db.Close()
		d.db = nil
	}

	driver, dsn, err := d.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTypeQueryExecution,
			"could not open warehouse connection")
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, apperrors.Wrap(err, apperrors.ErrTypeQueryExecution,
			"could not connect to the warehouse").
			WithDetail(err.Error()).
			WithSuggestion("Check the warehouse credentials and network access")
	}

	d.db = db

	return db, nil
}

// Execute runs a normalized query. The leading context statement is executed
// on its own, followed by the legacy time parser setting, then the
// substantive query.
func (d *DB) Execute(ctx context.Context, sqlText string) (*ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}

	useStmt, query := dialect.Split(sqlText)
	if query == "" {
		return nil, apperrors.New(apperrors.ErrTypeQueryExecution, "query is empty")
	}

	if useStmt != "" {
		if _, err := db.ExecContext(ctx, useStmt); err != nil {
			return nil, queryError(err, "failed to select the warehouse database")
		}
	}

	if strings.ToLower(d.cfg.Driver) == "databricks" {
		if _, err := db.ExecContext(ctx, legacyTimeParserStmt); err != nil {
			return nil, queryError(err, "failed to configure the warehouse session")
		}
	}

	logging.WithField("query_len", len(query)).Debug("executing warehouse query")

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(err, "the warehouse rejected the query")
	}
	defer rows.Close()

	return scanResultSet(rows)
}

// Close releases the cached connection pool.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil

	return err
}

// queryError wraps a driver error with a user-facing message, keeping the
// driver text as technical detail.
func queryError(err error, message string) error {
	return apperrors.Wrap(err, apperrors.ErrTypeQueryExecution, message).
		WithDetail(err.Error()).
		WithSuggestion("Check the generated SQL against the schema with 'sales-assistant tables'")
}

// scanResultSet drains rows into a ResultSet with typed column metadata.
func scanResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, queryError(err, "failed to read result columns")
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, queryError(err, "failed to read result column types")
	}

	types := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		types[i] = ct.DatabaseTypeName()
	}

	rs := &ResultSet{Columns: columns, Types: types}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, queryError(err, "failed to scan a result row")
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		rs.Rows = append(rs.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, queryError(err, "failed while reading result rows")
	}

	return rs, nil
}
