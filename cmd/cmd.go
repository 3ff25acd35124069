package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/maintenance"
	"github.com/frahmantamala/practice-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	configPath string
	clearData  bool
)

var rootCmd = &cobra.Command{
	Use:   "practice-management",
	Short: "Practice Management",
	Long:  `Backend for a medical practice: users, roles, module permissions, patients and the activity trail.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// bootstrap loads the config and installs the process logger.
func bootstrap() (*internal.Config, *slog.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Configure(logger.Options{
		Env:          cfg.App.Env,
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		CriticalFile: cfg.Logging.CriticalFile,
	}); err != nil {
		logger.L().Warn("critical log file unavailable, using stderr", "file", cfg.Logging.CriticalFile, "error", err)
	}
	return cfg, logger.L(), nil
}

func isSQLite(driver string) bool {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}

// initDB opens gorm on the configured driver and applies the pool settings.
func initDB(cfg internal.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if isSQLite(cfg.Driver) {
		dialector = sqlite.Open(maintenance.SessionDSN(cfg.Source))
	} else {
		dialector = postgres.Open(cfg.Source)
	}

	logLevel := gormLogger.Warn
	if debug {
		logLevel = gormLogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// rawDB exposes gorm's pool through sqlx for hand-written SQL.
func rawDB(db *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	name := "pgx"
	if isSQLite(driver) {
		name = "sqlite3"
	}
	return sqlx.NewDb(sqlDB, name), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(optimizeDBCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(eventCmd)
}
