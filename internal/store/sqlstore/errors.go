package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/kwatalab/bsm/internal/store"
)

// wrapDBError wraps a database error with operation context and converts
// sql.ErrNoRows to store.ErrNotFound for consistent handling.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation reports whether err is a uniqueness-constraint
// violation on either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isConnectionError reports whether err indicates the connection itself is
// gone. Connection-level failures abort the whole run.
func isConnectionError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return false // server answered; not a connection problem
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "invalid connection")
}

// conflictField extracts the colliding column from a uniqueness error.
//
// SQLite reports "UNIQUE constraint failed: users.email". MySQL reports
// "Duplicate entry 'x' for key 'users.uniq_users_email'"; constraints are
// named uniq_<table>_<column> in the schema so the column survives the
// round trip.
func conflictField(err error, table string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		ref := strings.TrimSpace(msg[i+len("UNIQUE constraint failed: "):])
		if j := strings.IndexAny(ref, ", "); j >= 0 {
			ref = ref[:j]
		}
		if j := strings.LastIndex(ref, "."); j >= 0 {
			return ref[j+1:]
		}
		return ref
	}

	if i := strings.Index(msg, "for key '"); i >= 0 {
		key := msg[i+len("for key '"):]
		if j := strings.Index(key, "'"); j >= 0 {
			key = key[:j]
		}
		if j := strings.LastIndex(key, "."); j >= 0 {
			key = key[j+1:]
		}
		key = strings.TrimPrefix(key, "uniq_"+table+"_")
		key = strings.TrimPrefix(key, "uniq_")
		return key
	}

	return ""
}
