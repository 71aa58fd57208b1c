package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/koyamadev/stockkeeper-backend/pkg/auth"
	"github.com/koyamadev/stockkeeper-backend/pkg/config"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

// credentialStore resolves a stored password hash for a username.
// config.AuthConfig satisfies it.
type credentialStore interface {
	CredentialFor(username string) (string, bool)
}

type service struct {
	credentials credentialStore
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Credentials credentialStore
	JWTConfig   config.JWTConfig
	Now         func() time.Time
}

// NewService constructs a login service backed by the static operator
// credential list.
func NewService(params ServiceParams) (Service, error) {
	if params.Credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		credentials: params.Credentials,
		jwtCfg:      params.JWTConfig,
		now:         now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	hash, ok := s.credentials.CredentialFor(username)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(req.Password, hash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		Username: username,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		Username:    username,
	}, nil
}
