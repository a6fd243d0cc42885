package services

import (
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// RegionLookup resolves a region id. found is false when no such region
// exists.
type RegionLookup func(regionID string) (region entities.Region, found bool, err error)

// CanModifyRegion evaluates whether principal may update or delete a region.
//
// Admin and root are allowed without a lookup. Tiers below write are denied
// before storage is touched. A missing region is allowed so the caller
// surfaces not-found. Otherwise only the author may modify the region.
func CanModifyRegion(principal identityv1.Principal, regionID string, lookup RegionLookup) (bool, error) {
	if !principal.Authenticated {
		return false, nil
	}
	if principal.Tier.Privileged() {
		return true, nil
	}
	if !principal.Tier.AtLeast(identityv1.TierWrite) {
		return false, nil
	}

	region, found, err := lookup(regionID)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return principal.UserID != "" && region.AuthorID == principal.UserID, nil
}

// CanContribute covers region creation and voting: any authenticated
// principal of write tier or above.
func CanContribute(principal identityv1.Principal) bool {
	return principal.Authenticated && principal.Tier.AtLeast(identityv1.TierWrite)
}

// CanManageScrolls covers creating, editing and deleting scrolls.
func CanManageScrolls(principal identityv1.Principal) bool {
	return principal.Authenticated && principal.Tier.Privileged()
}
