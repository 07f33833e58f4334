package user

import (
	"strings"
	"time"

	domain "user-pref-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	FullName     string         `json:"fullName" validate:"required,min=3,max=120"`
	Email        string         `json:"email" validate:"required,email,max=255"`
	Password     string         `json:"password" validate:"required,min=8,max=72"`
	Phone        string         `json:"phone" validate:"omitempty,e164"`
	DocType      domain.DocType `json:"docType" validate:"omitempty,doctype"`
	Document     string         `json:"document" validate:"required_with=DocType,max=32"`
	FU           string         `json:"fu" validate:"omitempty,fu"`
	ImagePath    string         `json:"imagePath" validate:"max=512"`
	DefaultTheme domain.Theme   `json:"defaultTheme" validate:"omitempty,theme"`
}

// SetDefaults normalizes the email and applies the default theme.
func (r *CreateUserRequest) SetDefaults() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FU = strings.ToUpper(r.FU)
	if r.DefaultTheme == "" {
		r.DefaultTheme = domain.DefaultTheme
	}
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `json:"id" validate:"required,max=36"`
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Empty fields are left unchanged.
type UpdateUserRequest struct {
	ID       string         `json:"id" validate:"required,max=36"`
	FullName string         `json:"fullName" validate:"omitempty,min=3,max=120"`
	Email    string         `json:"email" validate:"omitempty,email,max=255"`
	Password string         `json:"password" validate:"omitempty,min=8,max=72"`
	Phone    string         `json:"phone" validate:"omitempty,e164"`
	DocType  domain.DocType `json:"docType" validate:"omitempty,doctype"`
	Document string         `json:"document" validate:"max=32"`
	FU       string         `json:"fu" validate:"omitempty,fu"`
}

// SetDefaults normalizes the email and region code.
func (r *UpdateUserRequest) SetDefaults() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FU = strings.ToUpper(r.FU)
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string `json:"id" validate:"required,max=36"`
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID string `json:"id"`
}

// UserResponse is the serialized form of a user. It never carries the password hash.
type UserResponse struct {
	ID         string              `json:"id"`
	FullName   string              `json:"fullName"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone,omitempty"`
	DocType    domain.DocType      `json:"docType,omitempty"`
	Document   string              `json:"document,omitempty"`
	FU         string              `json:"fu,omitempty"`
	Preference *PreferenceResponse `json:"preference,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	DeletedAt  *time.Time          `json:"deletedAt,omitempty"`
	DeletedBy  string              `json:"deletedBy,omitempty"`
}

// PreferenceResponse is the preference nested in a user response.
type PreferenceResponse struct {
	ID           string       `json:"id"`
	ImagePath    string       `json:"imagePath,omitempty"`
	DefaultTheme domain.Theme `json:"defaultTheme"`
}

// toResponse maps the aggregate to its response shape.
func toResponse(u domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		DocType:   u.DocType,
		Document:  u.Document,
		FU:        u.FU,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
		DeletedBy: u.DeletedBy,
	}
	if u.Preference != nil {
		resp.Preference = &PreferenceResponse{
			ID:           u.Preference.ID,
			ImagePath:    u.Preference.ImagePath,
			DefaultTheme: u.Preference.DefaultTheme,
		}
	}
	return resp
}
