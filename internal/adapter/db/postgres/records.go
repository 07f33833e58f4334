package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRecord represents the database schema for the users table.
type UserRecord struct {
	ID           string            `gorm:"type:varchar(36);primaryKey"`
	FullName     string            `gorm:"size:120;not null"`
	Email        string            `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string            `gorm:"not null"`
	Phone        string            `gorm:"size:32"`
	DocType      string            `gorm:"size:16"`
	Document     string            `gorm:"size:32"`
	FU           string            `gorm:"column:fu;size:2"`
	Preference   *PreferenceRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    string         `gorm:"size:255"`
}

// TableName specifies the table name for the UserRecord model.
func (UserRecord) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *UserRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// PreferenceRecord represents the database schema for the preferences table.
type PreferenceRecord struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	UserID       string `gorm:"type:varchar(36);not null;uniqueIndex"`
	ImagePath    string `gorm:"size:512"`
	DefaultTheme string `gorm:"size:16;not null;default:light"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    string         `gorm:"size:255"`
}

// TableName specifies the table name for the PreferenceRecord model.
func (PreferenceRecord) TableName() string {
	return "preferences"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *PreferenceRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Models lists every record migrated by AutoMigrate.
func Models() []any {
	return []any{&UserRecord{}, &PreferenceRecord{}}
}
