package cmd

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/practice-management/internal/role"
	rolePostgres "github.com/frahmantamala/practice-management/internal/role/postgres"
	"github.com/spf13/cobra"
)

var assignDefaultConfirmed bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage the fixed user roles",
}

var rolesSyncCmd = &cobra.Command{
	Use:          "sync",
	Short:        "Create any missing default role",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeDB, err := roleService()
		if err != nil {
			return err
		}
		defer closeDB()

		created, err := svc.EnsureDefaultRoles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d role(s) created, %d total\n", created, len(role.DefaultRoles()))
		return nil
	},
}

var rolesAssignDefaultCmd = &cobra.Command{
	Use:          "assign-default",
	Short:        "Give every user the default role, replacing current assignments",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !assignDefaultConfirmed {
			return errors.New("this replaces the role of every user; rerun with --yes to confirm")
		}

		svc, closeDB, err := roleService()
		if err != nil {
			return err
		}
		defer closeDB()

		if _, err := svc.EnsureDefaultRoles(cmd.Context()); err != nil {
			return err
		}
		n, err := svc.AssignDefaultRoleToAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d user(s) assigned the %s role\n", n, role.DefaultRoleName)
		return nil
	},
}

func roleService() (*role.Service, func(), error) {
	cfg, lg, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	db, err := initDB(cfg.Database, false)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return role.NewService(rolePostgres.NewRoleRepository(db), nil, lg), func() { _ = sqlDB.Close() }, nil
}

func init() {
	rolesAssignDefaultCmd.Flags().BoolVar(&assignDefaultConfirmed, "yes", false, "confirm the bulk reassignment")

	rolesCmd.AddCommand(rolesSyncCmd)
	rolesCmd.AddCommand(rolesAssignDefaultCmd)
}
