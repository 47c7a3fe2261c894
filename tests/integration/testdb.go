// Package integration runs the jewelstore services and API against a real
// PostgreSQL started with testcontainers and migrated with the embedded
// SQL migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/infrastructure/logger"
	"github.com/aurum/jewelstore/internal/infrastructure/migration"
	"github.com/aurum/jewelstore/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// server is one container per package; every test gets its own database in it
var server struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	admin     *sql.DB
	dsn       *url.URL
	err       error
	seq       atomic.Int64
}

func TestMain(m *testing.M) {
	code := m.Run()
	if server.container != nil {
		_ = server.admin.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_ = server.container.Terminate(ctx)
		cancel()
	}
	os.Exit(code)
}

// TestDB is a freshly migrated database owned by one test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	Name  string
}

// NewTestDB creates and migrates a database; it is dropped when the test ends
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	startServer(t)

	name := fmt.Sprintf("jewelstore_%d", server.seq.Add(1))
	_, err := server.admin.Exec("CREATE DATABASE " + name)
	require.NoError(t, err, "create database %s", name)

	dsn := *server.dsn
	dsn.Path = "/" + name
	m, err := migration.NewFromURL(dsn.String(), zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "run migrations")
	_ = m.Close()

	db, sqlDB := connect(t, dsn.String())
	t.Cleanup(func() {
		_ = sqlDB.Close()
		if _, err := server.admin.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)"); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})
	return &TestDB{DB: db, SqlDB: sqlDB, Name: name}
}

func startServer(t *testing.T) {
	t.Helper()
	server.once.Do(func() {
		ctx := context.Background()
		server.container, server.err = tcpostgres.Run(ctx,
			postgresImage,
			tcpostgres.WithDatabase("postgres"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if server.err != nil {
			return
		}
		var raw string
		if raw, server.err = server.container.ConnectionString(ctx, "sslmode=disable"); server.err != nil {
			return
		}
		if server.dsn, server.err = url.Parse(raw); server.err != nil {
			return
		}
		server.admin, server.err = sql.Open("postgres", raw)
	})
	require.NoError(t, server.err, "start postgres container")
}

// connect logs SQL through the app's gorm logger when TEST_DB_DEBUG is set
func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	var gl gormlogger.Interface = gormlogger.Discard
	if os.Getenv("TEST_DB_DEBUG") != "" {
		zl, err := logger.New(&logger.Config{Level: zapcore.DebugLevel.String(), Format: "console", Output: "stderr"})
		require.NoError(t, err)
		gl = logger.NewGormLogger(zl.Logger, gormlogger.Info, logger.WithSQLValues(true))
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gl, SkipDefaultTransaction: true})
	require.NoError(t, err, "connect")
	require.NoError(t, db.Use(persistence.OptimisticLocking{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}
