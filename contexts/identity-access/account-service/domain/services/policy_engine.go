package services

import (
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// UserLookup resolves a username to the stored account. found is false when
// no such account exists.
type UserLookup func(username string) (user entities.User, found bool, err error)

// HasAuthorityOver evaluates whether principal may act on the account named
// targetUsername.
//
// A missing target is allowed so the caller surfaces not-found instead of
// forbidden. Admin and root reach every account except root, including root
// itself. Other tiers only reach their own account. Lookup failures deny.
func HasAuthorityOver(principal identityv1.Principal, targetUsername string, lookup UserLookup) (bool, error) {
	if !principal.Authenticated {
		return false, nil
	}

	target, found, err := lookup(targetUsername)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}

	if principal.Tier.Privileged() {
		return !target.IsRoot(), nil
	}
	return principal.UserID != "" && principal.UserID == target.UserID, nil
}
