package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
)

// PreferenceRepoPG implements the preference Repository interface using PostgreSQL and GORM.
type PreferenceRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPreferenceRepoPG creates a new instance of PreferenceRepoPG.
func NewPreferenceRepoPG(db *gorm.DB, log *zap.Logger) *PreferenceRepoPG {
	return &PreferenceRepoPG{db: db, log: log}
}

// Create inserts a preference for a user that does not have one yet.
// A previously soft-deleted preference of the same user is restored in place.
func (r *PreferenceRepoPG) Create(ctx context.Context, p *user.Preference) (*user.Preference, error) {
	rec, err := PreferenceToDatabase(p)
	if err != nil {
		return nil, err
	}

	var existing PreferenceRecord
	err = r.db.WithContext(ctx).Unscoped().First(&existing, "user_id = ?", rec.UserID).Error
	switch {
	case err == nil && !existing.DeletedAt.Valid:
		return nil, apperrors.Conflict("preference already exists")
	case err == nil:
		if err := r.db.WithContext(ctx).Unscoped().Model(&existing).Updates(map[string]any{
			"image_path":    rec.ImagePath,
			"default_theme": rec.DefaultTheme,
			"deleted_at":    nil,
			"deleted_by":    "",
		}).Error; err != nil {
			return nil, integrationError("failed to restore preference", err)
		}
		return r.GetByUserID(ctx, rec.UserID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, integrationError("failed to check preference", err)
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.log.Error("failed to create preference in db", zap.Error(err), zap.String("user_id", p.UserID))
		return nil, integrationError("failed to create preference", err)
	}

	return PreferenceToEntity(rec)
}

// GetByUserID retrieves the live preference of a user.
func (r *PreferenceRepoPG) GetByUserID(ctx context.Context, userID string) (*user.Preference, error) {
	var rec PreferenceRecord
	if err := r.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("preference not found", zap.String("user_id", userID))
			return nil, apperrors.NotFound("preference not found", apperrors.WithCause(err))
		}
		r.log.Error("failed to get preference from db", zap.Error(err), zap.String("user_id", userID))
		return nil, integrationError("failed to get preference", err)
	}

	return PreferenceToEntity(&rec)
}

// Update writes the mutable preference columns for the owning user.
func (r *PreferenceRepoPG) Update(ctx context.Context, p *user.Preference) (*user.Preference, error) {
	rec, err := PreferenceToDatabase(p)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&PreferenceRecord{}).Where("user_id = ?", rec.UserID).Updates(map[string]any{
		"image_path":    rec.ImagePath,
		"default_theme": rec.DefaultTheme,
	})
	if res.Error != nil {
		r.log.Error("failed to update preference in db", zap.Error(res.Error), zap.String("user_id", rec.UserID))
		return nil, integrationError("failed to update preference", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("preference not found")
	}

	return r.GetByUserID(ctx, rec.UserID)
}

// DeleteByUserID soft-deletes the preference of a user.
func (r *PreferenceRepoPG) DeleteByUserID(ctx context.Context, userID, deletedBy string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PreferenceRecord{}).Where("user_id = ?", userID).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("preference not found")
		}
		return tx.Where("user_id = ?", userID).Delete(&PreferenceRecord{}).Error
	})
	if err != nil {
		return integrationError("failed to delete preference", err)
	}

	r.log.Info("preference soft-deleted in db", zap.String("user_id", userID), zap.String("deleted_by", deletedBy))
	return nil
}

// List retrieves a page of preferences.
func (r *PreferenceRepoPG) List(ctx context.Context, q user.ListQuery) ([]user.Preference, int64, error) {
	scoped, paged, err := paginate(r.db.WithContext(ctx).Model(&PreferenceRecord{}), q, "image_path", "default_theme")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		r.log.Error("failed to count preferences", zap.Error(err))
		return nil, 0, integrationError("failed to list preferences", err)
	}

	var records []PreferenceRecord
	if err := paged.Find(&records).Error; err != nil {
		r.log.Error("failed to list preferences from db", zap.Error(err))
		return nil, 0, integrationError("failed to list preferences", err)
	}

	prefs := make([]user.Preference, 0, len(records))
	for i := range records {
		p, err := PreferenceToEntity(&records[i])
		if err != nil {
			return nil, 0, err
		}
		prefs = append(prefs, *p)
	}

	return prefs, total, nil
}
