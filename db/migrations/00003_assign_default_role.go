package migrations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/pressly/goose/v3"
)

var ErrIrreversible = errors.New("irreversible migration")

func init() {
	goose.AddMigrationContext(upAssignDefaultRole, downAssignDefaultRole)
}

// upAssignDefaultRole seeds the fixed roles and moves every user onto the
// default one. Existing role assignments are overwritten.
func upAssignDefaultRole(ctx context.Context, tx *sql.Tx) error {
	for _, r := range role.DefaultRoles() {
		doc := make(map[string]string, len(r.Permissions))
		for m, l := range r.Permissions {
			doc[string(m)] = string(l)
		}
		perms, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode permissions for %s: %w", r.Name, err)
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO user_roles (name, description, permissions, is_active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (name) DO NOTHING`, r.Name, r.Description, string(perms))
		if err != nil {
			return fmt.Errorf("insert role %s: %w", r.Name, err)
		}
	}

	var roleID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM user_roles WHERE name = $1`, role.DefaultRoleName).Scan(&roleID)
	if err != nil {
		return fmt.Errorf("load default role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET role_id = $1`, roleID); err != nil {
		return fmt.Errorf("assign default role: %w", err)
	}
	return nil
}

func downAssignDefaultRole(_ context.Context, _ *sql.Tx) error {
	return ErrIrreversible
}
