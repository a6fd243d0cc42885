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

// UpdateUserCommand changes either the password (when Password is set) or
// the profile of the account named Username.
type UpdateUserCommand struct {
	Principal identityv1.Principal
	Username  string
	Password  *string
	Profile   entities.Profile
}

type DeleteUserCommand struct {
	Principal identityv1.Principal
	Username  string
}

type ChangePermissionsCommand struct {
	Principal identityv1.Principal
	Username  string
	Tier      identityv1.PermissionTier
}

// ManageUserUseCase groups the account mutations that sit behind the
// user-authority policy.
type ManageUserUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc ManageUserUseCase) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (entities.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if err := uc.authorize(ctx, cmd.Principal, username, "update"); err != nil {
		return entities.User{}, err
	}
	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return entities.User{}, err
	}

	if cmd.Password != nil {
		if err := validatePassword(*cmd.Password); err != nil {
			return entities.User{}, err
		}
		hash, err := uc.Hasher.Encode(*cmd.Password)
		if err != nil {
			return entities.User{}, err
		}
		user.PasswordHash = hash
	} else {
		profile := cmd.Profile.Normalize()
		if err := validateUsername(profile.Username); err != nil {
			return entities.User{}, err
		}
		if profile.Username != user.Username {
			if _, err := uc.Users.GetUserByUsername(ctx, profile.Username); err == nil {
				return entities.User{}, domainerrors.ErrUsernameTaken
			} else if !errors.Is(err, domainerrors.ErrUserNotFound) {
				return entities.User{}, err
			}
		}
		user.Username = profile.Username
		user.FirstName = profile.FirstName
		user.LastName = profile.LastName
		user.Contact = profile.Contact
	}

	user.UpdatedAt = resolveNow(uc.Clock)
	if err := uc.Users.UpdateUser(ctx, user); err != nil {
		return entities.User{}, err
	}
	application.ResolveLogger(uc.Logger).Info("account updated",
		"event", "account_updated",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
		"actor_id", cmd.Principal.UserID,
		"password_changed", cmd.Password != nil,
	)
	return user, nil
}

func (uc ManageUserUseCase) DeleteUser(ctx context.Context, cmd DeleteUserCommand) error {
	username := strings.TrimSpace(cmd.Username)
	if err := uc.authorize(ctx, cmd.Principal, username, "delete"); err != nil {
		return err
	}
	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := uc.Users.DeleteUser(ctx, user.UserID); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("account deleted",
		"event", "account_deleted",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
		"actor_id", cmd.Principal.UserID,
	)
	return nil
}

// ChangePermissions sets the tier of an account. Only admin and root callers
// may change tiers, and root can never be granted this way.
func (uc ManageUserUseCase) ChangePermissions(ctx context.Context, cmd ChangePermissionsCommand) (entities.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if !cmd.Principal.Authenticated {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	if !cmd.Principal.Tier.Privileged() {
		uc.logDenied(cmd.Principal, username, "change_permissions", nil)
		return entities.User{}, domainerrors.ErrForbidden
	}
	if err := uc.authorize(ctx, cmd.Principal, username, "change_permissions"); err != nil {
		return entities.User{}, err
	}
	if !cmd.Tier.Assignable() {
		return entities.User{}, domainerrors.ErrInvalidTier
	}
	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return entities.User{}, err
	}

	previous := user.Tier
	user.Tier = cmd.Tier
	user.UpdatedAt = resolveNow(uc.Clock)
	if err := uc.Users.UpdateUser(ctx, user); err != nil {
		return entities.User{}, err
	}
	application.ResolveLogger(uc.Logger).Info("account permissions changed",
		"event", "account_permissions_changed",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
		"actor_id", cmd.Principal.UserID,
		"previous_tier", previous.String(),
		"tier", user.Tier.String(),
	)
	return user, nil
}

func (uc ManageUserUseCase) authorize(
	ctx context.Context,
	principal identityv1.Principal,
	username string,
	action string,
) error {
	err := application.RequireAuthorityOver(ctx, uc.Users, principal, username)
	if err != nil && errors.Is(err, domainerrors.ErrForbidden) {
		uc.logDenied(principal, username, action, err)
	}
	return err
}

func (uc ManageUserUseCase) logDenied(principal identityv1.Principal, username string, action string, cause error) {
	attrs := []any{
		"event", "account_action_denied",
		"module", "identity-access/account-service",
		"layer", "application",
		"actor_id", principal.UserID,
		"target_username", username,
		"action", action,
	}
	// A bare ErrForbidden is a policy denial; anything else carries a lookup failure.
	if cause != nil && cause != domainerrors.ErrForbidden {
		attrs = append(attrs, "error", cause.Error())
	}
	application.ResolveLogger(uc.Logger).Warn("account action denied", attrs...)
}
