package commands

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
)

// IssueTokenUseCase mints a token for an existing account without a password
// check. It is reachable from the operator CLI only, never over HTTP.
type IssueTokenUseCase struct {
	Users  ports.UserRepository
	Tokens ports.TokenService
	Logger *slog.Logger
}

func (uc IssueTokenUseCase) Execute(ctx context.Context, username string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return AuthResult{}, domainerrors.ErrInvalidUsername
	}
	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := uc.Tokens.Issue(user.UserID)
	if err != nil {
		return AuthResult{}, err
	}
	application.ResolveLogger(uc.Logger).Info("operator token issued",
		"event", "account_operator_token_issued",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return AuthResult{Token: token, User: user}, nil
}
