package db

import (
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialect(t *testing.T) {
	for _, dbType := range []string{"postgres", "PostgreSQL", "mysql", "sqlite", "sqlite3"} {
		dialector, err := Dialect(config.Config{DBType: dbType})
		require.NoError(t, err, dbType)
		assert.NotNil(t, dialector, dbType)
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.EqualError(t, err, `unsupported database type "oracle"`)
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.Config{DBHost: "db", DBPort: "5432", DBUser: "app", DBName: "rentaldesk"})
	assert.Equal(t, "host=db port=5432 user=app dbname=rentaldesk sslmode=disable TimeZone=UTC", dsn)

	dsn = postgresDSN(config.Config{DBHost: "db", DBPort: "5432", DBUser: "app", DBName: "rentaldesk", DBSSLMode: "require", DBPassword: "s3cret"})
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "password=s3cret")
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(config.Config{DBHost: "db", DBPort: "3306", DBUser: "app", DBPassword: "pw", DBName: "rentaldesk"})

	assert.Contains(t, dsn, "app:pw@tcp(db:3306)/rentaldesk?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "rentaldesk", parsed.DBName)
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicateKeyErr(&gomysql.MySQLError{Number: 1452}))
}

type uniqueRow struct {
	ID    int64  `gorm:"primaryKey"`
	Email string `gorm:"uniqueIndex"`
}

func TestIsDuplicateKeyErrOnSQLite(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&uniqueRow{}))

	require.NoError(t, conn.Create(&uniqueRow{ID: 1, Email: "jane@example.com"}).Error)
	err = conn.Create(&uniqueRow{ID: 2, Email: "jane@example.com"}).Error

	require.Error(t, err)
	assert.True(t, IsDuplicateKeyErr(err))
	assert.True(t, IsNotFoundErr(conn.First(&uniqueRow{}, 99).Error))
}
