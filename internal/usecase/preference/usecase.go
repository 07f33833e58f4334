package preference

import (
	"context"

	"go.uber.org/zap"

	"user-pref-service/internal/auth"
	"user-pref-service/internal/domain/event"
	domain "user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/schema"
)

// Service implements the preference operations. Every preference is authorized
// through the user that owns it.
type Service struct {
	repo      Repository
	users     UserReader
	publisher event.Publisher
	validate  *schema.Validator
	log       *zap.Logger
}

var _ Usecase = (*Service)(nil)

// New creates a new preference service. A nil publisher disables domain events.
func New(r Repository, users UserReader, publisher event.Publisher, v *schema.Validator, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{repo: r, users: users, publisher: publisher, validate: v, log: log}
}

// CreatePreference creates the preference of the caller's own user.
func (s *Service) CreatePreference(ctx context.Context, identity *auth.Identity, in CreatePreferenceRequest) (*Response, error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	owner, err := s.owner(ctx, identity, in.UserID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Preference{
		UserID:       owner.ID,
		ImagePath:    in.ImagePath,
		DefaultTheme: in.DefaultTheme,
	})
	if err != nil {
		s.log.Error("failed to create preference", zap.String("user_id", owner.ID), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, owner, identity, created)

	resp := toResponse(*created)
	return &resp, nil
}

// GetPreference returns the preference of the caller's own user.
func (s *Service) GetPreference(ctx context.Context, identity *auth.Identity, in GetPreferenceRequest) (*Response, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	owner, err := s.owner(ctx, identity, in.UserID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByUserID(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(*p)
	return &resp, nil
}

// ListPreferences retrieves a page of preferences.
func (s *Service) ListPreferences(ctx context.Context, identity *auth.Identity, in domain.ListRequest) (*domain.Page[Response], error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}

	q := in.Query()
	prefs, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.log.Warn("failed to list preferences", zap.Error(err))
		return nil, err
	}

	page := domain.MapPage(domain.NewPage(prefs, total, q.Page, q.Limit), toResponse)
	return &page, nil
}

// UpdatePreference applies the non-empty fields of the request.
func (s *Service) UpdatePreference(ctx context.Context, identity *auth.Identity, in UpdatePreferenceRequest) (*Response, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	owner, err := s.owner(ctx, identity, in.UserID)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByUserID(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if in.ImagePath != "" {
		current.ImagePath = in.ImagePath
	}
	if in.DefaultTheme != "" {
		current.DefaultTheme = in.DefaultTheme
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		s.log.Error("failed to update preference", zap.String("user_id", owner.ID), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, owner, identity, updated)

	resp := toResponse(*updated)
	return &resp, nil
}

// DeletePreference soft-deletes the preference of the caller's own user.
func (s *Service) DeletePreference(ctx context.Context, identity *auth.Identity, in DeletePreferenceRequest) (*DeleteResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	owner, err := s.owner(ctx, identity, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteByUserID(ctx, owner.ID, identity.Username); err != nil {
		return nil, err
	}

	s.log.Info("preference deleted", zap.String("user_id", owner.ID), zap.String("deleted_by", identity.Username))
	return &DeleteResponse{UserID: owner.ID}, nil
}

// owner loads the user a preference belongs to and checks the identity may manage it.
func (s *Service) owner(ctx context.Context, identity *auth.Identity, userID string) (*domain.User, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !auth.ManageAuth(u, identity) {
		s.log.Warn("identity may not manage preference", zap.String("user_id", userID), zap.String("username", identity.Username))
		return nil, apperrors.Unauthorized("not allowed to manage this preference")
	}
	return u, nil
}

func (s *Service) publish(ctx context.Context, owner *domain.User, identity *auth.Identity, p *domain.Preference) {
	msg := event.New(event.PreferenceUpdated, owner.Email, identity.ClientID, map[string]any{
		"userId":       p.UserID,
		"imagePath":    p.ImagePath,
		"defaultTheme": string(p.DefaultTheme),
	})
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log.Warn("failed to publish event", zap.String("message_id", msg.ID), zap.Error(err))
	}
}
