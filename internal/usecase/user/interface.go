package user

import (
	"context"
	"time"

	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error)
	GetUser(ctx context.Context, identity *auth.Identity, in GetUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, identity *auth.Identity, in domain.ListRequest) (*domain.Page[UserResponse], error)
	UpdateUser(ctx context.Context, identity *auth.Identity, in UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, identity *auth.Identity, in DeleteUserRequest) (*DeleteUserResponse, error)
	PurgeDeletedUsers(ctx context.Context, retention time.Duration) (int, error)
}

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, a cached decorator) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)           // Create a user and its preference
	GetByID(ctx context.Context, id string) (*domain.User, error)               // Retrieve a live user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)         // Retrieve a live user by email, nil on miss
	Update(ctx context.Context, u *domain.User) (*domain.User, error)           // Update existing user
	Delete(ctx context.Context, id, deletedBy string) error                     // Soft-delete user and preference
	List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) // Page of users and total count
	PurgeDeleted(ctx context.Context, before time.Time) ([]string, error)       // Hard-delete users soft-deleted before a cutoff
}

// PreferenceReader loads the preference composed into a user response.
type PreferenceReader interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Preference, error)
}
