package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"user_admin/internal/domain"
	"user_admin/pkg/password"

	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "Invalid username or password"

// TokenIssuer signs a token for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, roles []domain.RoleName) (string, error)
}

type authUseCase struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
	log      *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, tokens TokenIssuer, logger *logrus.Logger) domain.AuthUseCase {
	return &authUseCase{
		userRepo: repo,
		tokens:   tokens,
		log:      logger,
	}
}

// Login checks credentials and issues a token. Bad credentials are a result, not an error.
func (uc *authUseCase) Login(ctx context.Context, userName, plain string) (*domain.AuthResponse, error) {
	userName = strings.TrimSpace(userName)
	uc.log.Infof("Use Case: Attempting login for user: %s", userName)

	if userName == "" || plain == "" {
		uc.log.Warn("Use Case: Login failed - empty username or password")
		return &domain.AuthResponse{Authenticated: false, ErrorMessage: msgInvalidCredentials}, nil
	}

	user, err := uc.userRepo.GetUserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.log.Warnf("Use Case: Login failed - user not found: %s", userName)
			return &domain.AuthResponse{Authenticated: false, ErrorMessage: msgInvalidCredentials}, nil
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during login: %v", userName, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := password.Compare(user.Password, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			uc.log.Warnf("Use Case: Login failed - incorrect password for user %s (ID: %d)", userName, user.ID)
			return &domain.AuthResponse{Authenticated: false, ErrorMessage: msgInvalidCredentials}, nil
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", userName, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	token, err := uc.tokens.Issue(strconv.FormatInt(user.ID, 10), user.RoleNames())
	if err != nil {
		uc.log.Errorf("Use Case: Failed to issue token for user %s: %v", userName, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Login successful for user %s (ID: %d)", userName, user.ID)
	return &domain.AuthResponse{
		Authenticated: true,
		Token:         token,
		UserID:        user.ID,
	}, nil
}
