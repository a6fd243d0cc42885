package annotation

import (
	"log/slog"
	"time"

	httpadapter "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/adapters/http"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/adapters/memory"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application/commands"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application/queries"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Scrolls     ports.ScrollRepository
	Regions     ports.RegionRepository
	Votes       ports.VoteLedger
	Images      ports.ImageStore
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	VoteTimeout time.Duration
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Catalog: commands.ScrollCatalogUseCase{
				Scrolls: deps.Scrolls,
				Images:  deps.Images,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			Regions: commands.RegionUseCase{
				Scrolls: deps.Scrolls,
				Regions: deps.Regions,
				Clock:   deps.Clock,
				IDGen:   deps.IDGen,
				Logger:  deps.Logger,
			},
			Vote: commands.CastVoteUseCase{
				Regions: deps.Regions,
				Votes:   deps.Votes,
				Clock:   deps.Clock,
				Timeout: deps.VoteTimeout,
				Logger:  deps.Logger,
			},
			ListScrolls: queries.ListScrollsUseCase{
				Scrolls: deps.Scrolls,
			},
			GetScroll: queries.GetScrollUseCase{
				Scrolls: deps.Scrolls,
			},
			Image: queries.ScrollImageUseCase{
				Scrolls: deps.Scrolls,
				Images:  deps.Images,
			},
			Sync: queries.ScrollRegionsUseCase{
				Scrolls: deps.Scrolls,
				Regions: deps.Regions,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			Votes: queries.RegionVotesUseCase{
				Regions: deps.Regions,
				Votes:   deps.Votes,
			},
			Permission: queries.RegionPermissionUseCase{
				Regions: deps.Regions,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule backs every port, images included, with one memory store.
func NewInMemoryModule(scrolls []entities.Scroll, regions []entities.Region, logger *slog.Logger) Module {
	store := memory.NewStore(scrolls, regions)
	module := NewModule(Dependencies{
		Scrolls:     store,
		Regions:     store,
		Votes:       store,
		Images:      store,
		Clock:       store,
		IDGen:       store,
		VoteTimeout: commands.DefaultVoteTimeout,
		Logger:      logger,
	})
	module.Store = store
	return module
}
