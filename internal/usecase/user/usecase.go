package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"user-pref-service/internal/auth"
	"user-pref-service/internal/domain/event"
	domain "user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/schema"
	"user-pref-service/pkg/security"
)

// Service implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo      Repository        // Repository for user data access
	prefs     PreferenceReader  // Reader for the composed preference
	publisher event.Publisher   // Publisher for domain events
	validate  *schema.Validator // Validator for request validation
	log       *zap.Logger       // Logger for structured logging
}

var _ Usecase = (*Service)(nil)

// New creates a new user service. A nil publisher disables domain events.
func New(r Repository, prefs PreferenceReader, publisher event.Publisher, v *schema.Validator, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{repo: r, prefs: prefs, publisher: publisher, validate: v, log: log}
}

// CreateUser creates a new user and its preference after validating the request
// and checking email uniqueness.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	s.log.Info("creating user", zap.String("email", in.Email))

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		s.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.Conflict("email already exists",
			apperrors.WithDetails(map[string]string{"email": "already exists"}))
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", apperrors.WithCause(err))
	}

	created, err := s.repo.Create(ctx, &domain.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		DocType:      in.DocType,
		Document:     in.Document,
		FU:           in.FU,
		Preference: &domain.Preference{
			ImagePath:    in.ImagePath,
			DefaultTheme: in.DefaultTheme,
		},
	})
	if err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, event.UserCreated, created.Email, "", map[string]any{"id": created.ID})

	resp := toResponse(*created)
	return &resp, nil
}

// GetUser returns the user with its preference. Only the user itself may read it.
func (s *Service) GetUser(ctx context.Context, identity *auth.Identity, in GetUserRequest) (*UserResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.authorized(ctx, identity, in.ID)
	if err != nil {
		return nil, err
	}

	pref, err := s.prefs.GetByUserID(ctx, u.ID)
	switch {
	case err == nil:
		u.Preference = pref
	case apperrors.KindOf(err) == apperrors.KindNotFound:
		u.Preference = nil
	default:
		s.log.Error("failed to load preference", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	resp := toResponse(*u)
	return &resp, nil
}

// ListUsers retrieves a paginated list of users with optional search functionality.
func (s *Service) ListUsers(ctx context.Context, identity *auth.Identity, in domain.ListRequest) (*domain.Page[UserResponse], error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}

	q := in.Query()
	s.log.Info("listing users", zap.String("search_term", q.SearchTerm), zap.Int64("page", q.Page), zap.Int64("limit", q.Limit))

	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindContract {
			s.log.Warn("invalid list query", zap.String("search_term", q.SearchTerm), zap.Error(err))
		} else {
			s.log.Error("failed to list users", zap.Int64("page", q.Page), zap.Int64("limit", q.Limit), zap.Error(err))
		}
		return nil, err
	}

	page := domain.MapPage(domain.NewPage(users, total, q.Page, q.Limit), toResponse)
	return &page, nil
}

// UpdateUser applies the non-empty fields of the request to the caller's own user.
func (s *Service) UpdateUser(ctx context.Context, identity *auth.Identity, in UpdateUserRequest) (*UserResponse, error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	u, err := s.authorized(ctx, identity, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != u.Email {
		existing, err := s.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, err
		}
		if existing != nil && existing.ID != u.ID {
			s.log.Warn("email already exists", zap.String("email", in.Email), zap.String("existing_id", existing.ID))
			return nil, apperrors.Conflict("email already exists",
				apperrors.WithDetails(map[string]string{"email": "already exists"}))
		}
		u.Email = in.Email
	}

	if in.FullName != "" {
		u.FullName = in.FullName
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.DocType != "" {
		u.DocType = in.DocType
	}
	if in.Document != "" {
		u.Document = in.Document
	}
	if in.FU != "" {
		u.FU = in.FU
	}
	if in.Password != "" {
		hash, err := security.HashPassword(in.Password)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", apperrors.WithCause(err))
		}
		u.PasswordHash = hash
	}
	if err := u.Validate(); err != nil {
		return nil, apperrors.Business(err.Error(), apperrors.WithCause(err))
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		s.log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, event.UserUpdated, updated.Email, identity.ClientID, map[string]any{"id": updated.ID})

	resp := toResponse(*updated)
	return &resp, nil
}

// DeleteUser soft-deletes the caller's own user together with its preference.
func (s *Service) DeleteUser(ctx context.Context, identity *auth.Identity, in DeleteUserRequest) (*DeleteUserResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.authorized(ctx, identity, in.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, u.ID, identity.Username); err != nil {
		s.log.Error("failed to delete user", zap.String("id", u.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("user deleted", zap.String("id", u.ID), zap.String("deleted_by", identity.Username))
	s.publish(ctx, event.UserDeleted, u.Email, identity.ClientID, map[string]any{"id": u.ID})

	return &DeleteUserResponse{ID: u.ID}, nil
}

// PurgeDeletedUsers hard-deletes users that have been soft-deleted for longer than retention.
func (s *Service) PurgeDeletedUsers(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, apperrors.Contract("retention must be positive")
	}

	ids, err := s.repo.PurgeDeleted(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// authorized loads the user and checks the identity may manage it.
// A missing identity is rejected before the repository is touched.
func (s *Service) authorized(ctx context.Context, identity *auth.Identity, id string) (*domain.User, error) {
	if identity == nil {
		s.log.Warn("missing identity", zap.String("user_id", id))
		return nil, apperrors.Unauthorized("authentication required")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.ManageAuth(u, identity) {
		s.log.Warn("identity may not manage user", zap.String("user_id", id), zap.String("username", identity.Username))
		return nil, apperrors.Unauthorized("not allowed to manage this user")
	}
	return u, nil
}

func (s *Service) publish(ctx context.Context, t event.Type, username, clientID string, data map[string]any) {
	msg := event.New(t, username, clientID, data)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log.Warn("failed to publish event", zap.String("event", string(t)), zap.String("message_id", msg.ID), zap.Error(err))
	}
}
