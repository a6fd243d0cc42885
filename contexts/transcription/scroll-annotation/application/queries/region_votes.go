package queries

import (
	"context"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// RegionVotesUseCase lists the ballots behind a region certainty score.
type RegionVotesUseCase struct {
	Regions ports.RegionRepository
	Votes   ports.VoteLedger
}

func (u RegionVotesUseCase) Execute(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
) ([]entities.Vote, error) {
	if err := application.RequireReader(principal); err != nil {
		return nil, err
	}
	region, err := u.Regions.GetRegion(ctx, strings.TrimSpace(regionID))
	if err != nil {
		return nil, err
	}
	if region.ScrollID != strings.TrimSpace(scrollID) {
		return nil, domainerrors.ErrRegionNotFound
	}
	return u.Votes.ListVotes(ctx, region.RegionID)
}

// RegionPermissionUseCase answers whether a caller may edit or delete a
// region, without performing the change. A region outside scrollID is
// reported as not found.
type RegionPermissionUseCase struct {
	Regions ports.RegionRepository
}

func (u RegionPermissionUseCase) CanModifyRegion(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
) (bool, error) {
	region, err := u.Regions.GetRegion(ctx, strings.TrimSpace(regionID))
	if err != nil {
		return false, err
	}
	if region.ScrollID != strings.TrimSpace(scrollID) {
		return false, domainerrors.ErrRegionNotFound
	}
	err = application.RequireRegionModify(ctx, u.Regions, principal, region.RegionID)
	switch {
	case err == nil:
		return true, nil
	case err == domainerrors.ErrForbidden, err == domainerrors.ErrUnauthenticated:
		return false, nil
	default:
		return false, err
	}
}
