package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// ResolvePrincipalUseCase turns a bearer token into the request principal.
// Every failure yields the anonymous principal; rejection is left to the
// policy checks downstream.
type ResolvePrincipalUseCase struct {
	Users  ports.UserRepository
	Tokens ports.TokenService
	Logger *slog.Logger
}

func (u ResolvePrincipalUseCase) Execute(ctx context.Context, token string) identityv1.Principal {
	token = strings.TrimSpace(token)
	if token == "" || u.Tokens == nil {
		return identityv1.Anonymous()
	}
	if !u.Tokens.Validate(token) {
		return identityv1.Anonymous()
	}
	subject := strings.TrimSpace(u.Tokens.ExtractSubject(token))
	if subject == "" {
		return identityv1.Anonymous()
	}

	user, err := u.Users.GetUserByID(ctx, subject)
	if err != nil {
		logger := application.ResolveLogger(u.Logger)
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			logger.Debug("token subject has no account",
				"event", "account_principal_subject_missing",
				"module", "identity-access/account-service",
				"layer", "application",
				"user_id", subject,
			)
		} else {
			logger.Error("principal resolution failed",
				"event", "account_principal_resolve_failed",
				"module", "identity-access/account-service",
				"layer", "application",
				"user_id", subject,
				"error", err.Error(),
			)
		}
		return identityv1.Anonymous()
	}
	return user.Principal()
}
