package user

import (
	"strings"

	"github.com/frahmantamala/practice-management/internal/core/common/validation"
)

// CreateUserRequest is the body of POST /users after sanitizing and rule checks.
type CreateUserRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
}

var createUserRules = validation.Rules{
	"email":      validation.Required(validation.TypeEmail).WithLength(0, 254),
	"name":       validation.Required(validation.TypeString).WithLength(2, 100),
	"password":   validation.Required(validation.TypeString).WithLength(0, 128),
	"phone":      validation.Optional(validation.TypePhone),
	"department": validation.Optional(validation.TypeString).WithLength(0, 100),
	"role":       validation.Optional(validation.TypeString).WithLength(0, 50),
}

// CreateUserRules returns the rule set applied to POST /users bodies.
func CreateUserRules() validation.Rules {
	return createUserRules
}

// CreateUserRequestFromMap reads a validated body. The password is kept
// verbatim.
func CreateUserRequestFromMap(data map[string]any) CreateUserRequest {
	str := func(k string) string {
		s, _ := data[k].(string)
		return strings.TrimSpace(s)
	}
	password, _ := data["password"].(string)
	return CreateUserRequest{
		Email:      strings.ToLower(str("email")),
		Name:       str("name"),
		Password:   password,
		Phone:      str("phone"),
		Department: str("department"),
		Role:       str("role"),
	}
}
