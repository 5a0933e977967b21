package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errCountFailed = errors.New("count failed")

// countFailDriver answers every query with no rows, except count queries,
// which fail.
type countFailDriver struct{}

func (countFailDriver) Open(string) (driver.Conn, error) { return countFailConn{}, nil }

type countFailConn struct{}

func (countFailConn) Prepare(query string) (driver.Stmt, error) { return countFailStmt{query}, nil }
func (countFailConn) Close() error                              { return nil }
func (countFailConn) Begin() (driver.Tx, error)                 { return nil, errors.New("no transactions") }

type countFailStmt struct{ query string }

func (countFailStmt) Close() error  { return nil }
func (countFailStmt) NumInput() int { return -1 }
func (countFailStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("read only")
}

func (s countFailStmt) Query([]driver.Value) (driver.Rows, error) {
	if strings.Contains(strings.ToLower(s.query), "count(*) from") {
		return nil, errCountFailed
	}
	return emptyRows{}, nil
}

type emptyRows struct{}

func (emptyRows) Columns() []string         { return nil }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }

func init() {
	sql.Register("count-fail", countFailDriver{})
}

func newCountFailDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("count-fail", "")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGetResellerStats_ReturnsCountErrors(t *testing.T) {
	db := newCountFailDB(t)
	orders := NewOrderRepo(db, NewProductRepo(db))

	stats, err := orders.GetResellerStats(context.Background(), uuid.New())
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, errCountFailed)
	assert.Contains(t, err.Error(), "count listings")
}
