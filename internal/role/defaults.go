package role

// DefaultRoleName is given to every user by the default-role migration and to
// new users created without a role.
const DefaultRoleName = "staff"

const (
	RoleSuperAdmin   = "super_admin"
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
	RoleStaff        = DefaultRoleName
)

// DefaultRoles are the six fixed roles seeded on every installation.
func DefaultRoles() []Role {
	everything := func(l Level) map[Module]Level {
		out := make(map[Module]Level, len(allModules))
		for _, m := range allModules {
			out[m] = l
		}
		return out
	}

	return []Role{
		{
			Name:        RoleSuperAdmin,
			Description: "Unrestricted access to every module",
			Permissions: everything(LevelAdmin),
			IsActive:    true,
		},
		{
			Name:        RoleAdmin,
			Description: "Practice administrator",
			Permissions: map[Module]Level{
				ModulePatients:     LevelDelete,
				ModuleAppointments: LevelDelete,
				ModuleFinance:      LevelEdit,
				ModuleInventory:    LevelEdit,
				ModuleReports:      LevelView,
				ModuleSettings:     LevelEdit,
				ModuleUsers:        LevelAdmin,
			},
			IsActive: true,
		},
		{
			Name:        RoleDoctor,
			Description: "Clinician with full patient record access",
			Permissions: map[Module]Level{
				ModulePatients:     LevelEdit,
				ModuleAppointments: LevelEdit,
				ModuleReports:      LevelView,
			},
			IsActive: true,
		},
		{
			Name:        RoleNurse,
			Description: "Clinical support staff",
			Permissions: map[Module]Level{
				ModulePatients:     LevelEdit,
				ModuleAppointments: LevelEdit,
				ModuleInventory:    LevelView,
			},
			IsActive: true,
		},
		{
			Name:        RoleReceptionist,
			Description: "Front desk: registration and scheduling",
			Permissions: map[Module]Level{
				ModulePatients:     LevelCreate,
				ModuleAppointments: LevelEdit,
				ModuleFinance:      LevelView,
			},
			IsActive: true,
		},
		{
			Name:        RoleStaff,
			Description: "Basic read-only access",
			Permissions: map[Module]Level{
				ModulePatients:     LevelView,
				ModuleAppointments: LevelView,
			},
			IsActive: true,
		},
	}
}
