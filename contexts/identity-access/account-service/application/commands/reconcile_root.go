package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type ReconcileRootCommand struct {
	Username string
	Password string
}

// ReconcileRootUseCase makes the stored root account match the configured
// credentials. It is idempotent and runs once at process start.
type ReconcileRootUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc ReconcileRootUseCase) Execute(ctx context.Context, cmd ReconcileRootCommand) (entities.RootReconciliation, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return entities.RootReconciliation{}, domainerrors.ErrRootNotConfigured
	}
	if err := validateUsername(username); err != nil {
		return entities.RootReconciliation{}, err
	}

	current, found, err := uc.Users.GetRootUser(ctx)
	if err != nil {
		return entities.RootReconciliation{}, err
	}
	if err := uc.ensureUsernameFree(ctx, username, current, found); err != nil {
		return entities.RootReconciliation{}, err
	}
	now := resolveNow(uc.Clock)

	if !found {
		hash, err := uc.Hasher.Encode(cmd.Password)
		if err != nil {
			return entities.RootReconciliation{}, err
		}
		userID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.RootReconciliation{}, err
		}
		root := entities.User{
			UserID:       userID,
			Username:     username,
			FirstName:    "Root",
			PasswordHash: hash,
			Tier:         identityv1.TierRoot,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.Users.CreateUser(ctx, root); err != nil {
			return entities.RootReconciliation{}, err
		}
		logger.Info("root account created",
			"event", "account_root_created",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", root.UserID,
			"username", root.Username,
		)
		return entities.RootReconciliation{Action: entities.RootCreated, After: root}, nil
	}

	before := current
	if current.Username == username && uc.Hasher.Matches(cmd.Password, current.PasswordHash) {
		logger.Info("root account aligned with configuration",
			"event", "account_root_unchanged",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", current.UserID,
		)
		return entities.RootReconciliation{Action: entities.RootUnchanged, Before: &before, After: current}, nil
	}

	hash, err := uc.Hasher.Encode(cmd.Password)
	if err != nil {
		return entities.RootReconciliation{}, err
	}
	current.Username = username
	current.PasswordHash = hash
	current.UpdatedAt = now
	if err := uc.Users.UpdateUser(ctx, current); err != nil {
		return entities.RootReconciliation{}, err
	}
	logger.Warn("root account drifted from configuration, corrected",
		"event", "account_root_updated",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", current.UserID,
		"previous_username", before.Username,
		"username", current.Username,
	)
	return entities.RootReconciliation{Action: entities.RootUpdated, Before: &before, After: current}, nil
}

// ensureUsernameFree rejects a configured root username that already belongs
// to a regular account.
func (uc ReconcileRootUseCase) ensureUsernameFree(
	ctx context.Context,
	username string,
	root entities.User,
	rootFound bool,
) error {
	existing, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if rootFound && existing.UserID == root.UserID {
		return nil
	}
	return domainerrors.ErrUsernameTaken
}
