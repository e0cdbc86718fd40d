package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/app/services"
	"github.com/amirphl/lead-connect/repository"
	"go.uber.org/zap"
)

// LoginFlow authenticates users and issues access tokens
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	users        repository.UserRepository
	tokenService services.TokenService
	logger       *zap.Logger
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(users repository.UserRepository, tokenService services.TokenService, logger *zap.Logger) LoginFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginFlowImpl{
		users:        users,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Login checks the username and password and returns an access token
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error) {
	users, err := lf.users.LoadAll(ctx)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	username := strings.TrimSpace(request.Username)
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if !CheckPassword(u.PasswordHash, request.Password) {
			lf.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "password"))
			return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrIncorrectPassword)
		}

		token, expiresAt, err := lf.tokenService.GenerateAccessToken(u)
		if err != nil {
			return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
		}
		lf.logger.Info("login succeeded", zap.String("username", username), zap.String("role", u.Role.String()))
		return &dto.LoginResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(lf.tokenService.AccessTokenTTL().Seconds()),
			ExpiresAt:   expiresAt,
			User:        ToUserInfo(u),
		}, nil
	}

	lf.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "unknown user"))
	return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrUserNotFound)
}

// Logout revokes the access token
func (lf *LoginFlowImpl) Logout(ctx context.Context, accessToken string) error {
	if err := lf.tokenService.RevokeToken(accessToken); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	return nil
}
