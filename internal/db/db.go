package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ParseURL maps a warehouse URL to a driver name and the DSN that driver
// expects. postgres:// and postgresql:// go to lib/pq; sqlite://path and
// file: URLs go to modernc.org/sqlite.
func ParseURL(addr string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(addr, "postgres://"), strings.HasPrefix(addr, "postgresql://"):
		return DriverPostgres, addr, nil
	case strings.HasPrefix(addr, "sqlite://"):
		path := strings.TrimPrefix(addr, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", addr)
		}
		return DriverSQLite, "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	case strings.HasPrefix(addr, "file:"):
		return DriverSQLite, addr, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", addr)
	}
}

func New(addr string, maxOpenConns, maxIdleConns int, maxIdleTime string) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(addr)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// Single writer; extra connections only queue on the file lock.
		maxOpenConns, maxIdleConns = 1, 1
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	duration, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	return db, nil
}
