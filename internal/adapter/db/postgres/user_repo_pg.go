package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
)

// UserRepoPG implements the user Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// Create inserts a new user together with its preference.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	rec, err := ToDatabase(u)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, integrationError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.String("id", rec.ID))
	return ToEntity(rec)
}

// GetByID retrieves a user by ID. Soft-deleted users are not found.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var rec UserRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, apperrors.NotFound("user not found", apperrors.WithCause(err))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, integrationError("failed to get user", err)
	}

	return ToEntity(&rec)
}

// GetByEmail retrieves a user by email address. It returns nil without error on a miss.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var rec UserRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, integrationError("failed to get user by email", err)
	}

	return ToEntity(&rec)
}

// Update writes the mutable user columns. The preference is updated through its own repository.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (*user.User, error) {
	rec, err := ToDatabase(u)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&UserRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"full_name":     rec.FullName,
		"email":         rec.Email,
		"password_hash": rec.PasswordHash,
		"phone":         rec.Phone,
		"doc_type":      rec.DocType,
		"document":      rec.Document,
		"fu":            rec.FU,
	})
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.String("id", rec.ID))
		return nil, integrationError("failed to update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("user not found")
	}

	r.log.Info("user updated in db", zap.String("id", rec.ID))
	return r.GetByID(ctx, rec.ID)
}

// Delete soft-deletes a user and its preference, recording who deleted them.
func (r *UserRepoPG) Delete(ctx context.Context, id, deletedBy string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserRecord{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("user not found")
		}
		if err := tx.Delete(&UserRecord{}, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&PreferenceRecord{}).Where("user_id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&PreferenceRecord{}).Error
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		}
		return integrationError("failed to delete user", err)
	}

	r.log.Info("user soft-deleted in db", zap.String("id", id), zap.String("deleted_by", deletedBy))
	return nil
}

// List retrieves a page of users with their preferences.
func (r *UserRepoPG) List(ctx context.Context, q user.ListQuery) ([]user.User, int64, error) {
	scoped, paged, err := paginate(r.db.WithContext(ctx).Model(&UserRecord{}), q, "full_name", "email")
	if err != nil {
		r.log.Warn("rejected list query", zap.String("search_term", q.SearchTerm), zap.Error(err))
		return nil, 0, err
	}

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return nil, 0, integrationError("failed to list users", err)
	}

	var records []UserRecord
	preload := paged.Preload("Preference")
	if q.SelectSoftDeleted {
		preload = paged.Preload("Preference", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	}
	if err := preload.Find(&records).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int64("page", q.Page), zap.Int64("limit", q.Limit))
		return nil, 0, integrationError("failed to list users", err)
	}

	users := make([]user.User, 0, len(records))
	for i := range records {
		u, err := ToEntity(&records[i])
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}

	return users, total, nil
}

// PurgeDeleted permanently removes users soft-deleted before the cutoff and returns their ids.
func (r *UserRepoPG) PurgeDeleted(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&UserRecord{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Unscoped().Where("user_id IN ?", ids).Delete(&PreferenceRecord{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&UserRecord{}).Error
	})
	if err != nil {
		r.log.Error("failed to purge deleted users", zap.Error(err), zap.Time("before", before))
		return nil, integrationError("failed to purge deleted users", err)
	}

	if len(ids) > 0 {
		r.log.Info("purged soft-deleted users", zap.Int("count", len(ids)), zap.Time("before", before))
	}
	return ids, nil
}
