package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// ScrollRegionsUseCase serves delta sync. The returned cursor is read from
// the clock before the region query, so a region written during the read is
// delivered again on the next call instead of being skipped.
type ScrollRegionsUseCase struct {
	Scrolls ports.ScrollRepository
	Regions ports.RegionRepository
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (u ScrollRegionsUseCase) Execute(
	ctx context.Context,
	principal identityv1.Principal,
	scrollID string,
	since *time.Time,
) (entities.RegionDelta, error) {
	if err := application.RequireReader(principal); err != nil {
		return entities.RegionDelta{}, err
	}
	scroll, err := u.Scrolls.GetScroll(ctx, strings.TrimSpace(scrollID))
	if err != nil {
		return entities.RegionDelta{}, err
	}

	cursor := u.now()
	regions, err := u.Regions.ListRegions(ctx, scroll.ScrollID, since)
	if err != nil {
		return entities.RegionDelta{}, err
	}
	if regions == nil {
		regions = []entities.Region{}
	}

	attrs := []any{
		"event", "annotation_regions_synced",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", scroll.ScrollID,
		"count", len(regions),
	}
	if since != nil {
		attrs = append(attrs, "since", since.UTC().Format(time.RFC3339Nano))
	}
	application.ResolveLogger(u.Logger).Debug("regions synced", attrs...)

	return entities.RegionDelta{Regions: regions, LastSyncTimestamp: cursor}, nil
}

func (u ScrollRegionsUseCase) now() time.Time {
	if u.Clock != nil {
		return services.SyncCursor(u.Clock.Now())
	}
	return services.SyncCursor(time.Now())
}
