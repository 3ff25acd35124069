package patient

import (
	"time"

	patientDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/patient"
	"github.com/frahmantamala/practice-management/internal/core/common/validation"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Patient struct {
	ID          int64
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
	Address     string
	Notes       string
	IsActive    bool
	CreatedByID *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p *Patient) ToResponse() PatientResponse {
	return PatientResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth.Format(validation.DateLayout),
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		Notes:       p.Notes,
		IsActive:    p.IsActive,
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Filter narrows List. Search matches first name, last name or email.
type Filter struct {
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

func ToDataModel(p *Patient) *patientDatamodel.Patient {
	return &patientDatamodel.Patient{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		Notes:       p.Notes,
		IsActive:    p.IsActive,
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *patientDatamodel.Patient) *Patient {
	return &Patient{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		Notes:       p.Notes,
		IsActive:    p.IsActive,
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
