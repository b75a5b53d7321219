// Package integration runs the ledger against a real PostgreSQL started with
// testcontainers, using the embedded migrations for the schema.
package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/facturar/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a migrated test database
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a fresh PostgreSQL container and applies the migrations.
// Tests calling it are skipped in -short mode.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)

	tdb.Migrator().Up()
	return tdb
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(context.Background())
	}
}

// Migrator returns a migration runner bound to the test database
func (tdb *TestDB) Migrator() *testMigrator {
	m, err := migration.NewFromURL(tdb.DSN, zap.NewNop())
	require.NoError(tdb.t, err)
	return &testMigrator{t: tdb.t, m: m}
}

// CleanTables empties every ledger table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	require.NoError(tdb.t, tdb.DB.Exec(
		"TRUNCATE payments, invoice_lines, invoices, products, customers CASCADE").Error)
}

type testMigrator struct {
	t *testing.T
	m *migration.Migrator
}

func (tm *testMigrator) Up() {
	tm.t.Helper()
	defer tm.m.Close()
	require.NoError(tm.t, tm.m.Up(), "Failed to apply migrations")
}

func (tm *testMigrator) Down() {
	tm.t.Helper()
	defer tm.m.Close()
	require.NoError(tm.t, tm.m.Down(), "Failed to roll back migrations")
}

func (tm *testMigrator) Version() uint {
	tm.t.Helper()
	defer tm.m.Close()
	v, dirty, err := tm.m.Version()
	require.NoError(tm.t, err)
	require.False(tm.t, dirty)
	return v
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get sql.DB")
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}
