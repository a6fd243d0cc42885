package ports

import (
	"context"
	"io"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
)

type ScrollRepository interface {
	CreateScroll(ctx context.Context, scroll entities.Scroll) error
	// UpdateScroll replaces the scroll stored under previousID. Regions follow
	// a scroll id change.
	UpdateScroll(ctx context.Context, previousID string, scroll entities.Scroll) error
	// DeleteScroll removes the scroll, its regions and their votes atomically.
	DeleteScroll(ctx context.Context, scrollID string) error
	GetScroll(ctx context.Context, scrollID string) (entities.Scroll, error)
	ListScrolls(ctx context.Context) ([]entities.Scroll, error)
}

type RegionRepository interface {
	CreateRegion(ctx context.Context, region entities.Region) error
	// UpdateRegion replaces coordinates and transcription of a region under
	// scrollID and advances its UpdatedAt from clock, read once the region
	// is locked.
	UpdateRegion(
		ctx context.Context,
		scrollID string,
		regionID string,
		draft entities.RegionDraft,
		clock Clock,
	) (entities.Region, error)
	// DeleteRegion removes a region under scrollID together with its votes.
	DeleteRegion(ctx context.Context, scrollID string, regionID string) error
	GetRegion(ctx context.Context, regionID string) (entities.Region, error)
	// ListRegions returns the regions of a scroll, restricted to
	// UpdatedAt > since when since is set.
	ListRegions(ctx context.Context, scrollID string, since *time.Time) ([]entities.Region, error)
}

// VoteLedger owns the vote/certainty compound write.
type VoteLedger interface {
	// CastVote upserts vote, recomputes the region certainty from the full
	// vote set and stores both in one unit of work serialized on the region.
	// The vote and region timestamps come from clock after the region is
	// locked. A region missing or outside scrollID yields ErrRegionNotFound.
	CastVote(ctx context.Context, scrollID string, vote entities.Vote, clock Clock) (entities.Region, error)
	ListVotes(ctx context.Context, regionID string) ([]entities.Vote, error)
}

// ImageStore keeps scroll images as opaque blobs keyed by image key.
type ImageStore interface {
	Put(ctx context.Context, key string, content io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Rename(ctx context.Context, from string, to string) error
	// Delete treats a missing blob as already deleted.
	Delete(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
