package queries

import (
	"context"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type AuthorityUseCase struct {
	Users ports.UserRepository
}

// HasAuthorityOver answers the user-authority policy for principal.
func (u AuthorityUseCase) HasAuthorityOver(
	ctx context.Context,
	principal identityv1.Principal,
	targetUsername string,
) (bool, error) {
	return services.HasAuthorityOver(principal, targetUsername, application.UserLookup(ctx, u.Users))
}
