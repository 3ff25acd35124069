package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	patientDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/patient"
	roleDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/role"
	"github.com/frahmantamala/practice-management/internal/patient"
	patientPostgres "github.com/frahmantamala/practice-management/internal/patient/postgres"
	"github.com/frahmantamala/practice-management/internal/role"
	rolePostgres "github.com/frahmantamala/practice-management/internal/role/postgres"
	"github.com/frahmantamala/practice-management/internal/user"
	userPostgres "github.com/frahmantamala/practice-management/internal/user/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Seed the database with sample data",
	Long:         `Seed the database with the default roles, one user per role and a few patients for development and testing.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, lg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := initDB(cfg.Database, false)
		if err != nil {
			return err
		}

		if clearData {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&patientDatamodel.Patient{}).Error; err != nil {
				return fmt.Errorf("clear patients: %w", err)
			}
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&roleDatamodel.ModulePermission{}).Error; err != nil {
				return fmt.Errorf("clear module permissions: %w", err)
			}
			fmt.Println("cleared patients and module permissions")
		}

		roles := role.NewService(rolePostgres.NewRoleRepository(db), nil, lg)
		created, err := roles.EnsureDefaultRoles(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("roles ready (%d created)\n", created)

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		users := userPostgres.NewUserRepository(db)
		var adminID int64
		for _, r := range role.DefaultRoles() {
			u := &user.User{
				Email:        r.Name + "@clinic.local",
				Name:         r.Description,
				PasswordHash: string(hash),
				IsActive:     true,
			}
			err := users.Create(ctx, u, r.Name)
			switch {
			case errors.Is(err, internal.ErrEmailTaken):
				fmt.Println("user already exists:", u.Email)
				continue
			case err != nil:
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			if r.Name == role.RoleSuperAdmin {
				adminID = u.ID
			}
			fmt.Println("seeded user:", u.Email)
		}

		patients := patientPostgres.NewPatientRepository(db)
		samples := []patient.Patient{
			{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC), Email: "ada@example.test"},
			{FirstName: "Alan", LastName: "Turing", DateOfBirth: time.Date(1972, 6, 23, 0, 0, 0, 0, time.UTC), Phone: "+441234567890"},
			{FirstName: "Grace", LastName: "Hopper", DateOfBirth: time.Date(1996, 12, 9, 0, 0, 0, 0, time.UTC), Notes: "prefers morning appointments"},
		}
		for i := range samples {
			p := samples[i]
			p.IsActive = true
			if adminID != 0 {
				p.CreatedByID = &adminID
			}
			if err := patients.Create(ctx, &p); err != nil {
				return fmt.Errorf("seed patient %s: %w", p.FullName(), err)
			}
		}
		fmt.Printf("seeded %d patients\n", len(samples))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "Practice#2026", "password for every seeded user")
}
