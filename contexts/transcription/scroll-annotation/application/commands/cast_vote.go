package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

const DefaultVoteTimeout = 5 * time.Second

type CastVoteCommand struct {
	Principal identityv1.Principal
	ScrollID  string
	RegionID  string
	Value     int
}

// CastVoteUseCase records one vote per user and region and returns the
// region with its recomputed certainty.
type CastVoteUseCase struct {
	Regions ports.RegionRepository
	Votes   ports.VoteLedger
	Clock   ports.Clock
	Timeout time.Duration
	Logger  *slog.Logger
}

func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (entities.Region, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireContributor(cmd.Principal); err != nil {
		return entities.Region{}, err
	}
	if !entities.ValidVoteValue(cmd.Value) {
		return entities.Region{}, domainerrors.ErrInvalidVoteValue
	}
	scrollID := strings.TrimSpace(cmd.ScrollID)
	regionID := strings.TrimSpace(cmd.RegionID)
	if regionID == "" {
		return entities.Region{}, domainerrors.ErrRegionNotFound
	}
	region, err := uc.Regions.GetRegion(ctx, regionID)
	if err != nil {
		return entities.Region{}, err
	}
	if region.ScrollID != scrollID {
		return entities.Region{}, domainerrors.ErrRegionNotFound
	}
	if !cmd.Principal.HasIdentity() {
		return entities.Region{}, domainerrors.ErrInvalidCredentials
	}

	timeout := uc.Timeout
	if timeout <= 0 {
		timeout = DefaultVoteTimeout
	}
	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	updated, err := uc.Votes.CastVote(txCtx, scrollID, entities.Vote{
		UserID:   cmd.Principal.UserID,
		RegionID: regionID,
		Value:    cmd.Value,
	}, resolveClock(uc.Clock))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Error("vote transaction timed out",
				"event", "annotation_vote_timeout",
				"module", "transcription/scroll-annotation",
				"layer", "application",
				"region_id", regionID,
				"user_id", cmd.Principal.UserID,
				"timeout", timeout.String(),
			)
			return entities.Region{}, errors.Join(domainerrors.ErrVoteTransactionTimeout, err)
		}
		return entities.Region{}, err
	}

	logger.Info("vote cast",
		"event", "annotation_vote_cast",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", scrollID,
		"region_id", regionID,
		"user_id", cmd.Principal.UserID,
		"value", cmd.Value,
		"certainty_score", updated.CertaintyScore,
	)
	return updated, nil
}
