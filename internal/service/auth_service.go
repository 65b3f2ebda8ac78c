package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/auth"
	"github.com/civic-stack/complaint-service/internal/config"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// AuthService authenticates staff and admins; it supplies the acting
// principal the engine's operations require but performs no authorization
// beyond role extraction.
type AuthService struct {
	store  repository.Store
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthService creates the service.
func NewAuthService(store repository.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:  store,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:    cfg,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// StaffLoginResult carries the issued token.
type StaffLoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *domain.StaffMember
}

// StaffLogin verifies credentials and issues a JWT.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (*StaffLoginResult, error) {
	staff, err := s.store.Staff().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &StaffLoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}
