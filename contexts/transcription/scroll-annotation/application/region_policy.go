package application

import (
	"context"
	"errors"
	"strings"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// RegionLookup adapts a repository to the policy engine lookup signature.
func RegionLookup(ctx context.Context, regions ports.RegionRepository) services.RegionLookup {
	return func(regionID string) (entities.Region, bool, error) {
		region, err := regions.GetRegion(ctx, strings.TrimSpace(regionID))
		if err != nil {
			if errors.Is(err, domainerrors.ErrRegionNotFound) {
				return entities.Region{}, false, nil
			}
			return entities.Region{}, false, err
		}
		return region, true, nil
	}
}

// RequireRegionModify gates region update and delete. A failed lookup denies
// and stays joined to ErrForbidden for logging.
func RequireRegionModify(
	ctx context.Context,
	regions ports.RegionRepository,
	principal identityv1.Principal,
	regionID string,
) error {
	if !principal.Authenticated {
		return domainerrors.ErrUnauthenticated
	}
	allowed, err := services.CanModifyRegion(principal, regionID, RegionLookup(ctx, regions))
	if err != nil {
		return errors.Join(domainerrors.ErrForbidden, err)
	}
	if !allowed {
		return domainerrors.ErrForbidden
	}
	return nil
}

// RequireContributor gates region creation and voting.
func RequireContributor(principal identityv1.Principal) error {
	if !principal.Authenticated {
		return domainerrors.ErrUnauthenticated
	}
	if !services.CanContribute(principal) {
		return domainerrors.ErrForbidden
	}
	return nil
}

// RequireScrollManager gates scroll catalog mutations.
func RequireScrollManager(principal identityv1.Principal) error {
	if !principal.Authenticated {
		return domainerrors.ErrUnauthenticated
	}
	if !services.CanManageScrolls(principal) {
		return domainerrors.ErrForbidden
	}
	return nil
}

// RequireReader gates catalog and region reads.
func RequireReader(principal identityv1.Principal) error {
	if !principal.Authenticated {
		return domainerrors.ErrUnauthenticated
	}
	return nil
}
