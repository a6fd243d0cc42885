package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
)

type LoginCommand struct {
	Username string
	Password string
}

type LoginUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenService
	Logger *slog.Logger
}

// Execute answers ErrInvalidCredentials for both unknown usernames and wrong
// passwords.
func (uc LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (AuthResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return AuthResult{}, domainerrors.ErrInvalidCredentials
	}

	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return AuthResult{}, domainerrors.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !uc.Hasher.Matches(cmd.Password, user.PasswordHash) {
		logger.Warn("login rejected",
			"event", "account_login_rejected",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return AuthResult{}, domainerrors.ErrInvalidCredentials
	}

	token, err := uc.Tokens.Issue(user.UserID)
	if err != nil {
		return AuthResult{}, err
	}
	logger.Info("login succeeded",
		"event", "account_login_succeeded",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return AuthResult{Token: token, User: user}, nil
}
