package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application/commands"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application/queries"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type Handler struct {
	Catalog     commands.ScrollCatalogUseCase
	Regions     commands.RegionUseCase
	Vote        commands.CastVoteUseCase
	ListScrolls queries.ListScrollsUseCase
	GetScroll   queries.GetScrollUseCase
	Image       queries.ScrollImageUseCase
	Sync        queries.ScrollRegionsUseCase
	Votes       queries.RegionVotesUseCase
	Permission  queries.RegionPermissionUseCase
	Logger      *slog.Logger
}

func (h Handler) ListScrollsHandler(ctx context.Context, principal identityv1.Principal) (httptransport.ScrollListResponse, error) {
	scrolls, err := h.ListScrolls.Execute(ctx, principal)
	if err != nil {
		return httptransport.ScrollListResponse{}, err
	}
	items := make([]httptransport.ScrollResponse, 0, len(scrolls))
	for _, scroll := range scrolls {
		items = append(items, mapScroll(scroll))
	}
	return httptransport.ScrollListResponse{Items: items}, nil
}

func (h Handler) GetScrollHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
) (httptransport.ScrollResponse, error) {
	scroll, err := h.GetScroll.Execute(ctx, principal, scrollID)
	if err != nil {
		return httptransport.ScrollResponse{}, err
	}
	return mapScroll(scroll), nil
}

func (h Handler) CreateScrollHandler(
	ctx context.Context,
	principal identityv1.Principal,
	req httptransport.ScrollMetadataRequest,
	imageExtension string,
	image io.Reader,
) (httptransport.ScrollResponse, error) {
	scroll, err := h.Catalog.CreateScroll(ctx, commands.CreateScrollCommand{
		Principal:      principal,
		Metadata:       mapMetadata(req),
		ImageExtension: imageExtension,
		Image:          image,
	})
	if err != nil {
		return httptransport.ScrollResponse{}, err
	}
	return mapScroll(scroll), nil
}

func (h Handler) UpdateScrollHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	req httptransport.ScrollMetadataRequest,
) (httptransport.ScrollResponse, error) {
	scroll, err := h.Catalog.UpdateScroll(ctx, commands.UpdateScrollCommand{
		Principal: principal,
		ScrollID:  scrollID,
		Metadata:  mapMetadata(req),
	})
	if err != nil {
		return httptransport.ScrollResponse{}, err
	}
	return mapScroll(scroll), nil
}

func (h Handler) DeleteScrollHandler(ctx context.Context, principal identityv1.Principal, scrollID string) error {
	return h.Catalog.DeleteScroll(ctx, commands.DeleteScrollCommand{
		Principal: principal,
		ScrollID:  scrollID,
	})
}

func (h Handler) ScrollImageHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
) (queries.ScrollImage, error) {
	return h.Image.Execute(ctx, principal, scrollID)
}

func (h Handler) SyncRegionsHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	since *time.Time,
) (httptransport.RegionSyncResponse, error) {
	delta, err := h.Sync.Execute(ctx, principal, scrollID, since)
	if err != nil {
		return httptransport.RegionSyncResponse{}, err
	}
	items := make([]httptransport.RegionResponse, 0, len(delta.Regions))
	for _, region := range delta.Regions {
		items = append(items, mapRegion(region))
	}
	return httptransport.RegionSyncResponse{
		Regions:           items,
		LastSyncTimestamp: delta.LastSyncTimestamp,
	}, nil
}

func (h Handler) CreateRegionHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	req httptransport.RegionRequest,
) (httptransport.RegionResponse, error) {
	region, err := h.Regions.CreateRegion(ctx, commands.CreateRegionCommand{
		Principal: principal,
		ScrollID:  scrollID,
		Draft:     mapDraft(req),
	})
	if err != nil {
		return httptransport.RegionResponse{}, err
	}
	return mapRegion(region), nil
}

func (h Handler) UpdateRegionHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
	req httptransport.RegionRequest,
) (httptransport.RegionResponse, error) {
	region, err := h.Regions.UpdateRegion(ctx, commands.UpdateRegionCommand{
		Principal: principal,
		ScrollID:  scrollID,
		RegionID:  regionID,
		Draft:     mapDraft(req),
	})
	if err != nil {
		return httptransport.RegionResponse{}, err
	}
	return mapRegion(region), nil
}

func (h Handler) DeleteRegionHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
) error {
	return h.Regions.DeleteRegion(ctx, commands.DeleteRegionCommand{
		Principal: principal,
		ScrollID:  scrollID,
		RegionID:  regionID,
	})
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
	req httptransport.VoteRequest,
) (httptransport.RegionResponse, error) {
	// A missing value is rejected by the use case after its access checks.
	value := entities.MinVoteValue - 1
	if req.Value != nil {
		value = *req.Value
	}
	region, err := h.Vote.Execute(ctx, commands.CastVoteCommand{
		Principal: principal,
		ScrollID:  scrollID,
		RegionID:  regionID,
		Value:     value,
	})
	if err != nil {
		return httptransport.RegionResponse{}, err
	}
	return mapRegion(region), nil
}

func (h Handler) ListVotesHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
) (httptransport.VoteListResponse, error) {
	votes, err := h.Votes.Execute(ctx, principal, scrollID, regionID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, httptransport.VoteResponse{
			UserID:    vote.UserID,
			Value:     vote.Value,
			UpdatedAt: vote.UpdatedAt,
		})
	}
	return httptransport.VoteListResponse{RegionID: regionID, Items: items}, nil
}

// RegionPermissionHandler lets clients decide whether to offer edit controls.
func (h Handler) RegionPermissionHandler(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	regionID string,
) (httptransport.RegionPermissionResponse, error) {
	allowed, err := h.Permission.CanModifyRegion(ctx, principal, scrollID, regionID)
	if err != nil {
		return httptransport.RegionPermissionResponse{}, err
	}
	return httptransport.RegionPermissionResponse{RegionID: regionID, CanModify: allowed}, nil
}

func mapMetadata(req httptransport.ScrollMetadataRequest) entities.ScrollMetadata {
	return entities.ScrollMetadata{
		ScrollID:     req.ScrollID,
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
	}
}

func mapDraft(req httptransport.RegionRequest) entities.RegionDraft {
	return entities.RegionDraft{
		Coordinates: entities.Coordinates{
			X:      req.Coordinates.X,
			Y:      req.Coordinates.Y,
			Width:  req.Coordinates.Width,
			Height: req.Coordinates.Height,
		},
		Transcription: req.Transcription,
	}
}

func mapScroll(scroll entities.Scroll) httptransport.ScrollResponse {
	return httptransport.ScrollResponse{
		ScrollID:     scroll.ScrollID,
		DisplayName:  scroll.DisplayName,
		Description:  scroll.Description,
		ThumbnailURL: scroll.ThumbnailURL,
		ImageURL:     "/scrolls/" + scroll.ScrollID + "/image",
		CreatedAt:    scroll.CreatedAt,
		UpdatedAt:    scroll.UpdatedAt,
	}
}

func mapRegion(region entities.Region) httptransport.RegionResponse {
	return httptransport.RegionResponse{
		RegionID: region.RegionID,
		ScrollID: region.ScrollID,
		AuthorID: region.AuthorID,
		Coordinates: httptransport.CoordinatesPayload{
			X:      region.Coordinates.X,
			Y:      region.Coordinates.Y,
			Width:  region.Coordinates.Width,
			Height: region.Coordinates.Height,
		},
		Transcription:  region.Transcription,
		CertaintyScore: region.CertaintyScore,
		CreatedAt:      region.CreatedAt,
		UpdatedAt:      region.UpdatedAt,
	}
}
