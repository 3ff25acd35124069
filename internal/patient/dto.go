package patient

import (
	"strings"
	"time"

	"github.com/frahmantamala/practice-management/internal/core/common/validation"
)

// PatientRequest is the create and full-update body after validation.
type PatientRequest struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
	Address     string
	Notes       string
}

type PatientResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedByID *int64    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items  []PatientResponse `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

var patientRules = validation.Rules{
	"first_name":    validation.Required(validation.TypeString).WithLength(1, 100),
	"last_name":     validation.Required(validation.TypeString).WithLength(1, 100),
	"date_of_birth": validation.Required(validation.TypeDate).WithCustom(validation.NotFuture),
	"email":         validation.Optional(validation.TypeEmail).WithLength(0, 254),
	"phone":         validation.Optional(validation.TypePhone),
	"address":       validation.Optional(validation.TypeString).WithLength(0, 500),
	"notes":         validation.Optional(validation.TypeString).WithLength(0, 2000),
}

// Rules returns the rule set for patient bodies.
func Rules() validation.Rules {
	return patientRules
}

// RequestFromMap reads a body that already passed Rules.
func RequestFromMap(data map[string]any) PatientRequest {
	str := func(k string) string {
		s, _ := data[k].(string)
		return strings.TrimSpace(s)
	}
	dob, _ := time.Parse(validation.DateLayout, str("date_of_birth"))
	return PatientRequest{
		FirstName:   str("first_name"),
		LastName:    str("last_name"),
		DateOfBirth: dob,
		Email:       strings.ToLower(str("email")),
		Phone:       str("phone"),
		Address:     str("address"),
		Notes:       str("notes"),
	}
}
