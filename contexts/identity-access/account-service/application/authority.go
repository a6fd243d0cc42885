package application

import (
	"context"
	"errors"
	"strings"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// UserLookup adapts a repository to the policy engine lookup signature.
func UserLookup(ctx context.Context, users ports.UserRepository) services.UserLookup {
	return func(username string) (entities.User, bool, error) {
		user, err := users.GetUserByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			if errors.Is(err, domainerrors.ErrUserNotFound) {
				return entities.User{}, false, nil
			}
			return entities.User{}, false, err
		}
		return user, true, nil
	}
}

// RequireAuthorityOver maps the authority decision to the error taxonomy:
// no credential is ErrUnauthenticated, a denial is ErrForbidden. A failed
// lookup also denies; the cause stays joined for logging only.
func RequireAuthorityOver(
	ctx context.Context,
	users ports.UserRepository,
	principal identityv1.Principal,
	targetUsername string,
) error {
	if !principal.Authenticated {
		return domainerrors.ErrUnauthenticated
	}
	allowed, err := services.HasAuthorityOver(principal, targetUsername, UserLookup(ctx, users))
	if err != nil {
		return errors.Join(domainerrors.ErrForbidden, err)
	}
	if !allowed {
		return domainerrors.ErrForbidden
	}
	return nil
}
