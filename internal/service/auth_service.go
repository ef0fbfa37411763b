package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoppyglobe/backend/internal/auth"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/shoppyglobe/backend/internal/repository"
)

type TokenIssuer interface {
	GenerateToken(userID string, role domain.Role) (string, error)
}

// ProfileUpdate carries optional profile changes. Nil or empty fields keep
// the stored value.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.Unavailable(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	// the unique index still guards against a concurrent registration
	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, "", err
		}
		return nil, "", domain.Unavailable(err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", domain.Unavailable(err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.Unavailable(err)
	}
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != "" {
		user.Name = *upd.Name
	}
	if upd.Email != nil && *upd.Email != "" {
		user.Email = *upd.Email
	}
	if upd.Password != nil && *upd.Password != "" {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, domain.Unavailable(err)
	}
	return updated, nil
}
