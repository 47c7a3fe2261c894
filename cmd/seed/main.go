package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	contentapp "github.com/aurum/jewelstore/internal/application/content"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/aurum/jewelstore/internal/infrastructure/event"
	"github.com/aurum/jewelstore/internal/infrastructure/logger"
	"github.com/aurum/jewelstore/internal/infrastructure/persistence"
	"github.com/aurum/jewelstore/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		file         string
		logLevel     string
		skipDefaults bool
	)
	flag.StringVar(&file, "file", "cmd/seed/seed.example.yaml", "Seed document to apply")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&skipDefaults, "skip-defaults", false, "Do not insert the built-in default settings")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Close()
	}()

	f, err := os.Open(file)
	if err != nil {
		log.Fatal("Failed to open seed file", zap.String("file", file), zap.Error(err))
	}
	doc, err := Parse(f)
	_ = f.Close()
	if err != nil {
		log.Fatal("Failed to parse seed file", zap.String("file", file), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log.Logger, logger.MapGormLogLevel(logLevel))))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeder := newSeeder(db, cfg, log.Logger)
	if !skipDefaults {
		n, err := seeder.settings.SeedDefaults(ctx)
		if err != nil {
			log.Fatal("Failed to seed default settings", zap.Error(err))
		}
		log.Info("Default settings seeded", zap.Int("created", n))
	}

	counts, err := seeder.Apply(ctx, doc)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seed applied",
		zap.String("file", file),
		zap.Int("settings", counts.Settings),
		zap.Int("metal_rates", counts.Rates),
		zap.Int("categories", counts.Categories),
		zap.Int("products", counts.Products),
		zap.Int("home_sections", counts.Sections),
	)
}

// newSeeder wires the services against the database with a listener-free bus;
// rate and product events have no subscribers during a seed run
func newSeeder(db *persistence.Database, cfg *config.Config, log *zap.Logger) *Seeder {
	bus := event.NewInMemoryEventBus(log)

	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	rateRepo := persistence.NewGormMetalRateRepository(db.DB)

	settingService := settingsapp.NewSettingService(persistence.NewGormSettingRepository(db.DB), log)
	pricer := pricingapp.NewPricer(rateRepo, settingService, nil, log)

	return NewSeeder(
		settingService,
		pricingapp.NewRateService(rateRepo, nil, bus, log),
		catalogapp.NewCategoryService(categoryRepo, log),
		catalogapp.NewProductService(productRepo, categoryRepo, pricer, storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL), bus, log),
		contentapp.NewHomeSectionService(persistence.NewGormHomeSectionRepository(db.DB), log),
		log,
	)
}
