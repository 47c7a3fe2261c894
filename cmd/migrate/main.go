package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/aurum/jewelstore/internal/infrastructure/logger"
	"github.com/aurum/jewelstore/internal/infrastructure/migration"
	"github.com/aurum/jewelstore/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("usage")

// dbCommand runs against a connected migrator
type dbCommand struct {
	usage string
	run   func(m *migration.Migrator, source fs.FS, args []string, log *zap.Logger) error
}

var dbCommands = map[string]dbCommand{
	"up": {"up", func(m *migration.Migrator, _ fs.FS, _ []string, _ *zap.Logger) error {
		return m.Up()
	}},
	"down": {"down -yes", func(m *migration.Migrator, _ fs.FS, _ []string, _ *zap.Logger) error {
		if !confirmed {
			return fmt.Errorf("%w: down drops every table; rerun with -yes", errUsage)
		}
		return m.Down()
	}},
	"step": {"step <n>", func(m *migration.Migrator, _ fs.FS, args []string, _ *zap.Logger) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	}},
	"goto": {"goto <version>", func(m *migration.Migrator, _ fs.FS, args []string, _ *zap.Logger) error {
		n, err := intArg(args)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: version must be a non-negative number", errUsage)
		}
		return m.GoTo(uint(n))
	}},
	"force": {"force <version>", func(m *migration.Migrator, _ fs.FS, args []string, _ *zap.Logger) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)
	}},
	"status": {"status", func(m *migration.Migrator, source fs.FS, _ []string, log *zap.Logger) error {
		latest, err := migration.LatestVersion(source)
		if err != nil {
			return fmt.Errorf("read migration source: %w", err)
		}
		status, err := m.Status(latest)
		if err != nil {
			return err
		}
		log.Info("Migration status",
			zap.Uint("version", status.Version),
			zap.Uint("latest", status.Latest),
			zap.Bool("dirty", status.Dirty),
			zap.Bool("pending", status.Pending()),
		)
		return nil
	}},
}

var confirmed bool

func main() {
	var migrationsPath, logLevel string
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&confirmed, "yes", false, "Confirm destructive commands")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]
	if command == "version" {
		command = "status"
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Close()
	}()

	var source fs.FS = migrations.FS
	var opts []migration.Option
	if migrationsPath != "" {
		source = os.DirFS(migrationsPath)
		opts = append(opts, migration.WithSource(source, "."))
	}

	switch command {
	case "create":
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsDir
		}
		if err := create(dir, args[1:], log.Logger); err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		return
	case "list":
		if err := list(source); err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		return
	}

	cmd, ok := dbCommands[command]
	if !ok {
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(2)
	}

	m, closeDB, err := connect(log.Logger, opts)
	if err != nil {
		log.Fatal("Failed to connect", zap.Error(err))
	}
	defer closeDB()

	if err := cmd.run(m, source, args[1:], log.Logger); err != nil {
		if errors.Is(err, errUsage) {
			log.Error(err.Error(), zap.String("usage", "migrate "+cmd.usage))
			os.Exit(2)
		}
		log.Fatal("Migration "+command+" failed", zap.Error(err))
	}
}

// connect opens the configured postgres database. sqlite databases are
// migrated by the server with AutoMigrate instead.
func connect(log *zap.Logger, opts []migration.Option) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return nil, nil, fmt.Errorf("SQL migrations target postgres, configured driver is %s", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	m, err := migration.New(db, log, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() {
		_ = m.Close()
		_ = db.Close()
	}, nil
}

func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(source fs.FS) error {
	files, err := migration.ListMigrations(source)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No migrations found")
	}
	for _, f := range files {
		fmt.Printf("  %06d  %s\n", f.Version, f.Name)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: a number is required", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(flag.CommandLine.Output(), `Jewelstore database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations (needs -yes)
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  status | version      Show the applied and latest versions
  force <version>       Force set migration version after a failed run
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Read migrations from a directory instead of the embedded set
  -log-level string     Log level: debug, info, warn, error (default: info)
  -yes                  Confirm destructive commands

Configuration is read from config.toml and JEWEL_* environment variables,
e.g. JEWEL_DATABASE_HOST and JEWEL_DATABASE_PASSWORD.`)
}
