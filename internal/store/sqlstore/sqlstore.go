// Package sqlstore implements the target-store interfaces on database/sql.
//
// The driver is chosen from the connection string: MySQL DSNs for the real
// target deployments, plain file paths (SQLite) for local runs and tests.
// Vendor error shapes are classified here and never escape the package.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kwatalab/bsm/internal/store"
)

// Role selects which schema a store owns.
type Role string

const (
	RoleAccounts Role = "accounts"
	RoleBilling  Role = "billing"
	RolePartners Role = "partners"
)

// SQLStore is one target store connection, held open for the whole run.
type SQLStore struct {
	db     *sql.DB
	driver store.Driver
	role   Role
}

var _ store.Accounts = (*SQLStore)(nil)
var _ store.Billing = (*SQLStore)(nil)
var _ store.Partners = (*SQLStore)(nil)

// Open connects to the target store for the given role, verifies the
// connection with a ping (retried with exponential backoff; nothing is
// retried once the run is underway), and creates the role's tables if they
// do not exist.
func Open(ctx context.Context, role Role, dsn string) (*SQLStore, error) {
	drv := store.DetectDriver(dsn)
	switch drv {
	case store.DriverSQLite:
		dsn = store.SQLiteConnString(dsn)
	case store.DriverMySQL:
		normalized, err := mysqlConnString(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse %s dsn: %w", role, err)
		}
		dsn = normalized
	}

	db, err := sql.Open(string(drv), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", role, err)
	}
	if drv == store.DriverSQLite {
		// The embedded driver is single-writer; more connections just
		// trade "database is locked" errors for busy_timeout waits.
		db.SetMaxOpenConns(1)
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", role, err)
	}

	s := &SQLStore{db: db, driver: drv, role: role}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// mysqlConnString normalizes a MySQL DSN the way SQLiteConnString
// normalizes pragmas. DATETIME columns are scanned into time.Time, which
// the driver only supports with parseTime enabled, so a plain operator DSN
// would otherwise fail at the first row scan.
func mysqlConnString(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	var stmts []string
	switch s.role {
	case RoleAccounts:
		stmts = accountsSchema
	case RoleBilling:
		stmts = billingSchema
	case RolePartners:
		stmts = partnersSchema
	default:
		return fmt.Errorf("unknown store role %q", s.role)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrapDBError(fmt.Sprintf("create %s schema", s.role), err)
		}
	}
	return nil
}

// Close releases the connection. Called unconditionally at the end of a
// run, success or failure.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// withTx executes fn within a transaction, rolling back on error.
func (s *SQLStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transaction", err)
	}
	return nil
}
