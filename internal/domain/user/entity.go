package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"user-pref-service/pkg/enum"
)

// User represents a user entity in the system.
type User struct {
	ID           string      // ID is the unique identifier for the user
	FullName     string      // FullName is the display name of the user
	Email        string      // Email is the unique login of the user
	PasswordHash string      // PasswordHash is the bcrypt hash of the password
	Phone        string      // Phone is an optional contact number
	DocType      DocType     // DocType identifies the kind of Document
	Document     string      // Document is the identity document number
	FU           string      // FU is the two-letter federative unit (region code)
	Preference   *Preference // Preference is the optional owned preference
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
	DeletedBy    string
}

// Preference holds the display preferences of exactly one user.
type Preference struct {
	ID           string
	UserID       string
	ImagePath    string
	DefaultTheme Theme
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
	DeletedBy    string
}

// Theme is the UI theme stored in a preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"

	// DefaultTheme is applied when a preference is created without one.
	DefaultTheme = ThemeLight
)

// Themes lists every supported theme.
var Themes = enum.Set[Theme]{
	{Key: "LIGHT", Value: ThemeLight},
	{Key: "DARK", Value: ThemeDark},
	{Key: "SYSTEM", Value: ThemeSystem},
}

// DocType is the kind of identity document attached to a user.
type DocType string

const (
	DocTypeCPF      DocType = "CPF"
	DocTypeCNPJ     DocType = "CNPJ"
	DocTypeRG       DocType = "RG"
	DocTypePassport DocType = "PASSPORT"
)

// DocTypes lists every supported document type.
var DocTypes = enum.Set[DocType]{
	{Key: "CPF", Value: DocTypeCPF},
	{Key: "CNPJ", Value: DocTypeCNPJ},
	{Key: "RG", Value: DocTypeRG},
	{Key: "PASSPORT", Value: DocTypePassport},
}

// FUPattern matches a two-letter uppercase region code.
var FUPattern = regexp.MustCompile(`^[A-Z]{2}$`)

var (
	ErrEmailRequired   = errors.New("email is required")
	ErrInvalidTheme    = errors.New("defaultTheme is not a supported theme")
	ErrInvalidDocType  = errors.New("docType is not a supported document type")
	ErrInvalidFU       = errors.New("fu must be two uppercase letters")
	ErrDocumentMissing = errors.New("document is required when docType is set")
	ErrOwnerRequired   = errors.New("preference must belong to a user")
)

// Validate checks the aggregate invariants, including its preference.
func (u *User) Validate() error {
	if u == nil {
		return errors.New("user is nil")
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmailRequired
	}
	if u.DocType != "" {
		if !enum.Contains(DocTypes, u.DocType) {
			return ErrInvalidDocType
		}
		if u.Document == "" {
			return ErrDocumentMissing
		}
	}
	if u.FU != "" && !FUPattern.MatchString(u.FU) {
		return ErrInvalidFU
	}
	if u.Preference != nil {
		return u.Preference.validate(false)
	}
	return nil
}

// Validate checks the preference invariants.
func (p *Preference) Validate() error {
	return p.validate(true)
}

func (p *Preference) validate(requireOwner bool) error {
	if p == nil {
		return errors.New("preference is nil")
	}
	if requireOwner && p.UserID == "" {
		return ErrOwnerRequired
	}
	if p.DefaultTheme != "" && !enum.Contains(Themes, p.DefaultTheme) {
		return ErrInvalidTheme
	}
	return nil
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
