package postgres

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
)

// ToEntity converts a users row, and its preference when loaded, into the aggregate.
// A row that breaks the entity invariants yields nil with a contract error.
func ToEntity(rec *UserRecord) (*user.User, error) {
	if rec == nil {
		return nil, apperrors.Contract("cannot map a nil user record")
	}

	u := &user.User{
		ID:           rec.ID,
		FullName:     rec.FullName,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Phone:        rec.Phone,
		DocType:      user.DocType(rec.DocType),
		Document:     rec.Document,
		FU:           rec.FU,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		DeletedAt:    fromDeletedAt(rec.DeletedAt),
		DeletedBy:    rec.DeletedBy,
	}

	if rec.Preference != nil {
		p, err := PreferenceToEntity(rec.Preference)
		if err != nil {
			return nil, err
		}
		u.Preference = p
	}

	if err := u.Validate(); err != nil {
		return nil, apperrors.Contract("invalid user record: "+err.Error(), apperrors.WithCause(err))
	}

	return u, nil
}

// ToDatabase converts the aggregate into a users row. An entity that breaks its own
// invariants is not persisted: the result is nil with a contract error.
func ToDatabase(u *user.User) (*UserRecord, error) {
	if u == nil {
		return nil, apperrors.Contract("cannot map a nil user")
	}
	if err := u.Validate(); err != nil {
		return nil, apperrors.Contract("invalid user: "+err.Error(), apperrors.WithCause(err))
	}

	rec := &UserRecord{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		DocType:      string(u.DocType),
		Document:     u.Document,
		FU:           u.FU,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    toDeletedAt(u.DeletedAt),
		DeletedBy:    u.DeletedBy,
	}

	if u.Preference != nil {
		rec.Preference = preferenceRecord(u.Preference)
		if rec.Preference.UserID == "" {
			rec.Preference.UserID = u.ID
		}
	}

	return rec, nil
}

// PreferenceToEntity converts a preferences row into the domain value.
func PreferenceToEntity(rec *PreferenceRecord) (*user.Preference, error) {
	if rec == nil {
		return nil, apperrors.Contract("cannot map a nil preference record")
	}

	p := &user.Preference{
		ID:           rec.ID,
		UserID:       rec.UserID,
		ImagePath:    rec.ImagePath,
		DefaultTheme: user.Theme(rec.DefaultTheme),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		DeletedAt:    fromDeletedAt(rec.DeletedAt),
		DeletedBy:    rec.DeletedBy,
	}
	if err := p.Validate(); err != nil {
		return nil, apperrors.Contract("invalid preference record: "+err.Error(), apperrors.WithCause(err))
	}
	return p, nil
}

// PreferenceToDatabase converts a standalone preference into a row.
func PreferenceToDatabase(p *user.Preference) (*PreferenceRecord, error) {
	if p == nil {
		return nil, apperrors.Contract("cannot map a nil preference")
	}
	if err := p.Validate(); err != nil {
		return nil, apperrors.Contract("invalid preference: "+err.Error(), apperrors.WithCause(err))
	}
	return preferenceRecord(p), nil
}

func preferenceRecord(p *user.Preference) *PreferenceRecord {
	theme := p.DefaultTheme
	if theme == "" {
		theme = user.DefaultTheme
	}
	return &PreferenceRecord{
		ID:           p.ID,
		UserID:       p.UserID,
		ImagePath:    p.ImagePath,
		DefaultTheme: string(theme),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		DeletedAt:    toDeletedAt(p.DeletedAt),
		DeletedBy:    p.DeletedBy,
	}
}

func fromDeletedAt(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func toDeletedAt(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt(sql.NullTime{Time: *t, Valid: true})
}
