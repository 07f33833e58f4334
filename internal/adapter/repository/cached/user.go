package cached

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-pref-service/internal/adapter/cache"
	domain "user-pref-service/internal/domain/user"
	"user-pref-service/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository. A nil cache disables caching.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.String("id", id))
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, shared := r.group.Do(cache.GenerateKey(id, cache.UserPattern), func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		// Only one request hits database
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
			}
		}

		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := result.(*domain.User)
	if shared {
		// callers mutate the result, so waiters each get their own copy
		clone := *u
		return &clone, nil
	}
	return u, nil
}

// GetByEmail delegates to the DB repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, "update", u.ID)
	return updated, nil
}

// Delete soft-deletes the user in DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id, deletedBy string) error {
	if err := r.dbRepo.Delete(ctx, id, deletedBy); err != nil {
		return err
	}

	r.invalidate(ctx, "delete", id)
	return nil
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	return r.dbRepo.List(ctx, q)
}

// PurgeDeleted delegates to the DB repository and drops any cached purged user.
func (r *UserRepository) PurgeDeleted(ctx context.Context, before time.Time) ([]string, error) {
	ids, err := r.dbRepo.PurgeDeleted(ctx, before)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, "purge", ids...)
	return ids, nil
}

func (r *UserRepository) invalidate(ctx context.Context, op string, ids ...string) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	if err := r.cache.Delete(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate cache after "+op, zap.Strings("ids", ids), zap.Error(err))
	}
}
