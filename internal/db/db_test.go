package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		driver string
		dsn    string
		err    bool
	}{
		{name: "postgres", addr: "postgres://u:p@localhost:5432/dw?sslmode=disable", driver: DriverPostgres, dsn: "postgres://u:p@localhost:5432/dw?sslmode=disable"},
		{name: "postgresql", addr: "postgresql://localhost/dw", driver: DriverPostgres, dsn: "postgresql://localhost/dw"},
		{name: "sqlite path", addr: "sqlite:///var/lib/dw.db", driver: DriverSQLite, dsn: "file:/var/lib/dw.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{name: "sqlite file url", addr: "file:dw.db", driver: DriverSQLite, dsn: "file:dw.db"},
		{name: "empty sqlite path", addr: "sqlite://", err: true},
		{name: "unknown scheme", addr: "mysql://localhost/dw", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, err := ParseURL(tt.addr)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestNewSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dw.db")

	conn, err := New("sqlite://"+path, 25, 25, "15m")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, DriverSQLite, conn.DriverName())
	assert.Equal(t, 1, conn.Stats().MaxOpenConnections)

	var one int
	require.NoError(t, conn.Get(&one, conn.Rebind("SELECT ?"), 1))
	assert.Equal(t, 1, one)
}

func TestNewRejectsBadIdleTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dw.db")

	_, err := New("sqlite://"+path, 1, 1, "soon")
	require.Error(t, err)
}
