package store

import "strings"

// Driver identifies which database/sql driver a connection string selects.
type Driver string

const (
	DriverMySQL  Driver = "mysql"
	DriverSQLite Driver = "sqlite3"
)

// DetectDriver picks a driver from a connection string. MySQL DSNs carry an
// "@tcp(" or "@unix(" address block (user:pass@tcp(host)/db); anything else
// is treated as a SQLite path, which keeps local runs and tests on plain
// file paths.
func DetectDriver(dsn string) Driver {
	if strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(") {
		return DriverMySQL
	}
	return DriverSQLite
}

// SQLiteConnString normalizes a SQLite path into a file: URI with the
// pragmas every connection needs: foreign_keys for referential integrity
// and busy_timeout so concurrent test processes do not fail with
// "database is locked". Already-URI inputs keep their parameters.
func SQLiteConnString(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		if !strings.Contains(path, "_pragma=foreign_keys") {
			path += sep + "_pragma=foreign_keys(ON)"
			sep = "&"
		}
		if !strings.Contains(path, "_pragma=busy_timeout") {
			path += sep + "_pragma=busy_timeout(10000)"
		}
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(10000)"
}
