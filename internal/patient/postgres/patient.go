package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/practice-management/internal"
	patientDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/patient"
	"github.com/frahmantamala/practice-management/internal/patient"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*patient.Patient, error) {
	var row patientDatamodel.Patient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPatientNotFound
		}
		return nil, err
	}
	return patient.FromDataModel(&row), nil
}

func (r *PatientRepository) filterScope(f patient.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
		}
		return db
	}
}

func (r *PatientRepository) List(ctx context.Context, f patient.Filter) ([]patient.Patient, int64, error) {
	scope := r.filterScope(f)

	var total int64
	if err := r.db.WithContext(ctx).Model(&patientDatamodel.Patient{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []patientDatamodel.Patient
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("last_name ASC").Order("first_name ASC").Order("id ASC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]patient.Patient, 0, len(rows))
	for i := range rows {
		out = append(out, *patient.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	row := patient.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*p = *patient.FromDataModel(row)
	return nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	row := patient.ToDataModel(p)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	*p = *patient.FromDataModel(row)
	return nil
}

func (r *PatientRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&patientDatamodel.Patient{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrPatientNotFound
	}
	return nil
}
