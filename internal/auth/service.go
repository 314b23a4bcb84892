package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/users"
	pkgauth "github.com/hngo-dev/meshmart-backend/pkg/auth"
	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/security"
)

// LoginResult carries the minted token and the authenticated user.
type LoginResult struct {
	Token string
	User  *models.User
}

// Service implements credential verification and JWT issuance. Registration
// and session refresh live outside this module.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type service struct {
	users users.Repository
	jwt   config.JWTConfig
	now   func() time.Time
}

// NewService wires an auth service.
func NewService(usersRepo users.Repository, jwt config.JWTConfig) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{users: usersRepo, jwt: jwt, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account disabled")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds if the bookkeeping write fails.
		return &LoginResult{Token: token, User: user}, nil
	}
	return &LoginResult{Token: token, User: user}, nil
}
