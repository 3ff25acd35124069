package postgres

import (
	"context"

	"github.com/frahmantamala/practice-management/internal/activity"
	activityDatamodel "github.com/frahmantamala/practice-management/internal/core/datamodel/activity"
	"gorm.io/gorm"
)

// ActivityRepository implements activity.Repository using GORM
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, e *activity.Entry) error {
	row := activity.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

func filterScope(f activity.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.Module != "" {
			db = db.Where("module = ?", f.Module)
		}
		return db
	}
}

// List returns the newest entries first together with the unpaged total.
func (r *ActivityRepository) List(ctx context.Context, f activity.Filter) ([]activity.Entry, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&activityDatamodel.UserActivityLog{}).
		Scopes(filterScope(f)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []activityDatamodel.UserActivityLog
	err = r.db.WithContext(ctx).
		Scopes(filterScope(f)).
		Order(`"timestamp" DESC`).Order("id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]activity.Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, activity.FromDataModel(&rows[i]))
	}
	return entries, total, nil
}
