package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type CreateRegionCommand struct {
	Principal identityv1.Principal
	ScrollID  string
	Draft     entities.RegionDraft
}

type UpdateRegionCommand struct {
	Principal identityv1.Principal
	ScrollID  string
	RegionID  string
	Draft     entities.RegionDraft
}

type DeleteRegionCommand struct {
	Principal identityv1.Principal
	ScrollID  string
	RegionID  string
}

type RegionUseCase struct {
	Scrolls ports.ScrollRepository
	Regions ports.RegionRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc RegionUseCase) CreateRegion(ctx context.Context, cmd CreateRegionCommand) (entities.Region, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireContributor(cmd.Principal); err != nil {
		return entities.Region{}, err
	}
	draft := entities.RegionDraft{Coordinates: cmd.Draft.Coordinates, Transcription: strings.TrimSpace(cmd.Draft.Transcription)}
	if err := validateRegionDraft(draft); err != nil {
		return entities.Region{}, err
	}
	if !cmd.Principal.HasIdentity() {
		return entities.Region{}, domainerrors.ErrInvalidCredentials
	}
	scroll, err := uc.Scrolls.GetScroll(ctx, strings.TrimSpace(cmd.ScrollID))
	if err != nil {
		return entities.Region{}, err
	}
	regionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Region{}, err
	}

	now := services.NextUpdatedAt(time.Time{}, resolveNow(uc.Clock))
	region := entities.Region{
		RegionID:       regionID,
		ScrollID:       scroll.ScrollID,
		AuthorID:       cmd.Principal.UserID,
		Coordinates:    draft.Coordinates,
		Transcription:  draft.Transcription,
		CertaintyScore: entities.NoVotesCertainty,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Regions.CreateRegion(ctx, region); err != nil {
		return entities.Region{}, err
	}

	logger.Info("region created",
		"event", "annotation_region_created",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", region.ScrollID,
		"region_id", region.RegionID,
		"author_id", region.AuthorID,
	)
	return region, nil
}

func (uc RegionUseCase) UpdateRegion(ctx context.Context, cmd UpdateRegionCommand) (entities.Region, error) {
	logger := application.ResolveLogger(uc.Logger)
	regionID := strings.TrimSpace(cmd.RegionID)
	if err := uc.authorize(ctx, cmd.Principal, regionID, "update"); err != nil {
		return entities.Region{}, err
	}
	draft := entities.RegionDraft{Coordinates: cmd.Draft.Coordinates, Transcription: strings.TrimSpace(cmd.Draft.Transcription)}
	if err := validateRegionDraft(draft); err != nil {
		return entities.Region{}, err
	}

	region, err := uc.Regions.UpdateRegion(ctx, strings.TrimSpace(cmd.ScrollID), regionID, draft, resolveClock(uc.Clock))
	if err != nil {
		return entities.Region{}, err
	}
	logger.Info("region updated",
		"event", "annotation_region_updated",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", region.ScrollID,
		"region_id", region.RegionID,
		"actor_id", cmd.Principal.UserID,
	)
	return region, nil
}

// DeleteRegion removes the region and every vote cast on it.
func (uc RegionUseCase) DeleteRegion(ctx context.Context, cmd DeleteRegionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	regionID := strings.TrimSpace(cmd.RegionID)
	if err := uc.authorize(ctx, cmd.Principal, regionID, "delete"); err != nil {
		return err
	}
	scrollID := strings.TrimSpace(cmd.ScrollID)
	if err := uc.Regions.DeleteRegion(ctx, scrollID, regionID); err != nil {
		return err
	}
	logger.Info("region deleted",
		"event", "annotation_region_deleted",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", scrollID,
		"region_id", regionID,
		"actor_id", cmd.Principal.UserID,
	)
	return nil
}

func (uc RegionUseCase) authorize(ctx context.Context, principal identityv1.Principal, regionID string, action string) error {
	if regionID == "" {
		return domainerrors.ErrInvalidRegionID
	}
	err := application.RequireRegionModify(ctx, uc.Regions, principal, regionID)
	if err == nil {
		return nil
	}
	attrs := []any{
		"event", "annotation_region_modify_denied",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"region_id", regionID,
		"action", action,
		"actor_id", principal.UserID,
	}
	if err != domainerrors.ErrForbidden && err != domainerrors.ErrUnauthenticated {
		attrs = append(attrs, "error", err.Error())
	}
	application.ResolveLogger(uc.Logger).Warn("region modification denied", attrs...)
	return err
}
