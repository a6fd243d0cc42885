package commands

import (
	"context"
	"errors"
	"log/slog"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type RegisterCommand struct {
	Profile  entities.Profile
	Password string
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	Token string
	User  entities.User
}

// RegisterUseCase creates a read-tier account and signs the caller in.
type RegisterUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenService
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (AuthResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	profile := cmd.Profile.Normalize()
	if err := validateUsername(profile.Username); err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(cmd.Password); err != nil {
		return AuthResult{}, err
	}

	if _, err := uc.Users.GetUserByUsername(ctx, profile.Username); err == nil {
		logger.Warn("register rejected, username taken",
			"event", "account_register_username_taken",
			"module", "identity-access/account-service",
			"layer", "application",
			"username", profile.Username,
		)
		return AuthResult{}, domainerrors.ErrUsernameTaken
	} else if !errors.Is(err, domainerrors.ErrUserNotFound) {
		return AuthResult{}, err
	}

	hash, err := uc.Hasher.Encode(cmd.Password)
	if err != nil {
		return AuthResult{}, err
	}
	userID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return AuthResult{}, err
	}
	now := resolveNow(uc.Clock)
	user := entities.User{
		UserID:       userID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Contact:      profile.Contact,
		PasswordHash: hash,
		Tier:         identityv1.TierRead,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Users.CreateUser(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := uc.Tokens.Issue(user.UserID)
	if err != nil {
		return AuthResult{}, err
	}
	logger.Info("account registered",
		"event", "account_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
		"username", user.Username,
	)
	return AuthResult{Token: token, User: user}, nil
}
