package patient

import "time"

type Patient struct {
	ID          int64     `gorm:"primaryKey"`
	FirstName   string    `gorm:"column:first_name;size:100;not null"`
	LastName    string    `gorm:"column:last_name;size:100;not null"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;type:date;not null"`
	Email       string    `gorm:"column:email"`
	Phone       string    `gorm:"column:phone;size:20"`
	Address     string    `gorm:"column:address"`
	Notes       string    `gorm:"column:notes"`
	IsActive    bool      `gorm:"column:is_active;not null;index"`
	CreatedByID *int64    `gorm:"column:created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Patient) TableName() string { return "patients" }
