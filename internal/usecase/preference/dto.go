package preference

import (
	"time"

	domain "user-pref-service/internal/domain/user"
)

// CreatePreferenceRequest represents the request payload for creating a preference.
type CreatePreferenceRequest struct {
	UserID       string       `json:"userId" validate:"required,max=36"`
	ImagePath    string       `json:"imagePath" validate:"max=512"`
	DefaultTheme domain.Theme `json:"defaultTheme" validate:"omitempty,theme"`
}

// SetDefaults applies the default theme.
func (r *CreatePreferenceRequest) SetDefaults() {
	if r.DefaultTheme == "" {
		r.DefaultTheme = domain.DefaultTheme
	}
}

// GetPreferenceRequest represents the request payload for reading a preference.
type GetPreferenceRequest struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

// UpdatePreferenceRequest represents the request payload for updating a preference.
// Empty fields are left unchanged.
type UpdatePreferenceRequest struct {
	UserID       string       `json:"userId" validate:"required,max=36"`
	ImagePath    string       `json:"imagePath" validate:"max=512"`
	DefaultTheme domain.Theme `json:"defaultTheme" validate:"omitempty,theme"`
}

// DeletePreferenceRequest represents the request payload for deleting a preference.
type DeletePreferenceRequest struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

// DeleteResponse represents the response payload after deleting a preference.
type DeleteResponse struct {
	UserID string `json:"userId"`
}

// Response is the serialized form of a preference.
type Response struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ImagePath    string       `json:"imagePath,omitempty"`
	DefaultTheme domain.Theme `json:"defaultTheme"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	DeletedAt    *time.Time   `json:"deletedAt,omitempty"`
	DeletedBy    string       `json:"deletedBy,omitempty"`
}

func toResponse(p domain.Preference) Response {
	return Response{
		ID:           p.ID,
		UserID:       p.UserID,
		ImagePath:    p.ImagePath,
		DefaultTheme: p.DefaultTheme,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		DeletedAt:    p.DeletedAt,
		DeletedBy:    p.DeletedBy,
	}
}
