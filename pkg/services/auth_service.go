package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// AuthService authenticates users and issues session tokens.
type AuthService interface {
	// Login verifies credentials and returns the user with a signed token.
	// Returns apperrors.ErrInvalidCredentials for unknown emails and wrong
	// passwords alike.
	Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error)
	// CurrentUser loads the account behind an authenticated request.
	CurrentUser(ctx context.Context, id int) (*models.User, error)
	// SeedAdmin creates the admin account when no user with the given email
	// exists yet. Called once at startup so a fresh database can log in.
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type authService struct {
	users  repositories.UserRepository
	tokens *auth.Service
	logger *zap.Logger
}

func NewAuthService(users repositories.UserRepository, tokens *auth.Service, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("auth-service"),
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.String("email", email), zap.Error(err))
		return nil, "", time.Time{}, err
	}

	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, "", time.Time{}, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueToken(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, "", time.Time{}, err
	}

	return user, token, expiresAt, nil
}

func (s *authService) CurrentUser(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Seeded admin account", zap.String("email", email))
	return nil
}
