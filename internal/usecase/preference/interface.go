package preference

import (
	"context"

	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
)

// Usecase defines the interface for preference business logic operations.
type Usecase interface {
	CreatePreference(ctx context.Context, identity *auth.Identity, in CreatePreferenceRequest) (*Response, error)
	GetPreference(ctx context.Context, identity *auth.Identity, in GetPreferenceRequest) (*Response, error)
	ListPreferences(ctx context.Context, identity *auth.Identity, in domain.ListRequest) (*domain.Page[Response], error)
	UpdatePreference(ctx context.Context, identity *auth.Identity, in UpdatePreferenceRequest) (*Response, error)
	DeletePreference(ctx context.Context, identity *auth.Identity, in DeletePreferenceRequest) (*DeleteResponse, error)
}

// Repository defines the interface for preference data access operations.
type Repository interface {
	Create(ctx context.Context, p *domain.Preference) (*domain.Preference, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Preference, error)
	Update(ctx context.Context, p *domain.Preference) (*domain.Preference, error)
	DeleteByUserID(ctx context.Context, userID, deletedBy string) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.Preference, int64, error)
}

// UserReader loads the owner a preference is authorized against.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
