package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"filmclub/internal/domain"
	"filmclub/internal/store"
)

// UserService owns the validation, defaulting and friendship rules around
// users, applied identically for both storage backends.
type UserService struct {
	users    store.UserStore
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserService(users store.UserStore, validate *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{users: users, validate: validate, logger: logger}
}

// Create validates the user and persists it. A blank name silently
// defaults to the login.
func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.validate.StructCtx(ctx, user); err != nil {
		return nil, domain.Validationf("invalid user: %s", firstViolation(err))
	}
	if containsWhitespace(user.Login) {
		s.logger.WarnContext(ctx, "user rejected, login contains whitespace", slog.String("login", user.Login))
		return nil, domain.Validationf("login must not contain whitespace")
	}
	if !user.Birthday.IsZero() && user.Birthday.After(domain.Today().Time) {
		return nil, domain.Validationf("birthday must not be in the future")
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
		s.logger.DebugContext(ctx, "blank user name defaulted to login", slog.String("login", user.Login))
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", slog.Int64("userID", user.ID), slog.String("login", user.Login))
	return s.users.FindByID(ctx, user.ID)
}

// Update applies merge semantics mirroring films: email is always
// overwritten (validated first), login only if non-blank, name falls back
// to the previously stored login when blank, birthday only when present
// and not in the future.
func (s *UserService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == 0 {
		return nil, domain.Validationf("user id must be set")
	}
	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Email) == "" || !strings.Contains(user.Email, "@") {
		return nil, domain.Validationf("email must not be blank and must contain the @ character")
	}

	prevLogin := stored.Login
	stored.Email = user.Email
	if strings.TrimSpace(user.Login) != "" {
		if containsWhitespace(user.Login) {
			return nil, domain.Validationf("login must not contain whitespace")
		}
		stored.Login = user.Login
	}
	if strings.TrimSpace(user.Name) != "" {
		stored.Name = user.Name
	} else {
		stored.Name = prevLogin
	}
	if !user.Birthday.IsZero() && !user.Birthday.After(domain.Today().Time) {
		stored.Birthday = user.Birthday
	}

	if err := s.users.Update(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user updated", slog.Int64("userID", user.ID))
	return s.users.FindByID(ctx, user.ID)
}

func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}

func (s *UserService) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *UserService) Delete(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.Delete(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user deleted", slog.Int64("userID", userID))
	return user, nil
}

// AddFriend records a symmetric friendship between two existing users and
// returns the befriended user.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) (*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, friendID); err != nil {
		return nil, err
	}
	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "friend added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return s.users.FindByID(ctx, friendID)
}

// DeleteFriend removes a friendship from both users' friend sets.
func (s *UserService) DeleteFriend(ctx context.Context, userID, friendID int64) (*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, friendID); err != nil {
		return nil, err
	}
	if err := s.users.DeleteFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "friend removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return s.users.FindByID(ctx, friendID)
}

// Friends lists the user's friends as full entities.
func (s *UserService) Friends(ctx context.Context, userID int64) ([]*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Friends(ctx, userID)
}

// CommonFriends returns the intersection of both users' friend sets,
// resolved to existing users only.
func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		return nil, err
	}
	return s.users.CommonFriends(ctx, userID, otherID)
}

func containsWhitespace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
