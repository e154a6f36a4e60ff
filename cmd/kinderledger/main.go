package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
	"github.com/haneulsoft/kinderledger/internal/core/services"
	"github.com/haneulsoft/kinderledger/internal/feeds"
	"github.com/haneulsoft/kinderledger/internal/handlers"
	"github.com/haneulsoft/kinderledger/internal/middleware"
	"github.com/haneulsoft/kinderledger/internal/platform/config"
	"github.com/haneulsoft/kinderledger/internal/platform/database"
	"github.com/haneulsoft/kinderledger/internal/portal"
	"github.com/haneulsoft/kinderledger/internal/repositories/database/pgsql"
	"github.com/haneulsoft/kinderledger/internal/vault"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		os.Exit(1)
	}

	credentialVault, err := vault.New(cfg.VaultSecret)
	if err != nil {
		logger.Error("Failed to initialize credential vault", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dialer := portal.NewHTTPDialer(cfg.PortalBaseURL, cfg.PortalTimeout)

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(repos, credentialVault, dialer, buildFeeds(logger, cfg)...)

	transmitLimiter := limiter.New(memorystore.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.TransmitRatePerMin,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, transmitLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildFeeds wires every feed that has configuration. A missing feed is a
// warning, not an error: a deployment may use only spreadsheet uploads.
func buildFeeds(logger *slog.Logger, cfg *config.Config) []gateways.TransactionFeed {
	var out []gateways.TransactionFeed

	if cfg.BankFeedURL != "" {
		out = append(out, feeds.NewBankFeed(cfg.BankFeedURL, cfg.BankFeedAPIKey, cfg.FeedTimeout))
	} else {
		logger.Warn("BANK_FEED_URL not set, bank feed disabled")
	}

	if cfg.CMSFeedURL != "" {
		out = append(out, feeds.NewCMSFeed(cfg.CMSFeedURL, cfg.CMSFeedAPIKey, cfg.FeedTimeout))
	} else {
		logger.Warn("CMS_FEED_URL not set, CMS feed disabled")
	}

	if cfg.SheetsCredentials != "" {
		credBytes, err := os.ReadFile(cfg.SheetsCredentials)
		if err != nil {
			logger.Error("Failed to read sheets credentials file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sheetsFeed, err := feeds.NewSheetsFeed(context.Background(), credBytes, cfg.SheetsSpreadsheets, cfg.SheetsReadRange)
		if err != nil {
			logger.Error("Failed to initialize sheets feed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		out = append(out, sheetsFeed)
	} else {
		logger.Warn("SHEETS_CREDENTIALS_FILE not set, sheets feed disabled")
	}

	return out
}

func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
