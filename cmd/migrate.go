package cmd

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/practice-management/db/migrations"
	activityDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/activity"
	patientDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/patient"
	roleDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/practice-management/internal/role"
	rolePostgres "github.com/frahmantamala/practice-management/internal/role/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:         runMigration,
		Use:          "migrate",
		Short:        "Apply the embedded database migrations",
		SilenceUsage: true,
	}
	migrateRollback bool
	migrateDriver   string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().StringVar(&migrateDriver, "driver", "", "database driver, overrides database.driver")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	if migrateDriver != "" {
		cfg.Database.Driver = migrateDriver
	}

	if isSQLite(cfg.Database.Driver) {
		if migrateRollback {
			return errors.New("rollback is not supported on sqlite")
		}
		// The SQL migrations are postgres DDL; sqlite gets the schema from the
		// gorm models instead.
		db, err := initDB(cfg.Database, false)
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(
			&roleDatamodel.UserRole{},
			&userDatamodel.User{},
			&roleDatamodel.ModulePermission{},
			&activityDatamodel.UserActivityLog{},
			&patientDatamodel.Patient{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		created, err := role.NewService(rolePostgres.NewRoleRepository(db), nil, lg).EnsureDefaultRoles(cmd.Context())
		if err != nil {
			return err
		}
		lg.Info("sqlite schema up to date", "roles_created", created)
		return nil
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrations.TableName)

	if migrateRollback {
		if err := goose.DownContext(cmd.Context(), db, "."); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	}
	if err := goose.UpContext(cmd.Context(), db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
