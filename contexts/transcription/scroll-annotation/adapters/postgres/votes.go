package postgresadapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CastVote serializes on the region row: the row lock is taken before the
// vote upsert, so the recomputed mean always covers every committed vote.
func (r *Repository) CastVote(ctx context.Context, scrollID string, vote entities.Vote, clock ports.Clock) (entities.Region, error) {
	var updated entities.Region
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		region, err := lockRegion(tx, scrollID, vote.RegionID)
		if err != nil {
			return err
		}

		now := services.NextUpdatedAt(time.Time{}, clock.Now())
		vote.CreatedAt = now
		vote.UpdatedAt = now
		row := voteModelFromEntity(vote)
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "region_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      row.Value,
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		var values []int
		if err := tx.Model(&voteModel{}).
			Where("region_id = ?", region.ID).
			Pluck("value", &values).
			Error; err != nil {
			return err
		}
		region.CertaintyScore = services.Certainty(values)
		region.UpdatedAt = services.NextUpdatedAt(region.UpdatedAt, now)
		if err := tx.Model(&regionModel{}).
			Where("id = ?", region.ID).
			Updates(map[string]any{
				"certainty_score": region.CertaintyScore,
				"updated_at":      region.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		updated = region.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRegionNotFound) {
			return entities.Region{}, err
		}
		return entities.Region{}, r.logError("annotation_repo_cast_vote_failed", err,
			"region_id", vote.RegionID,
			"user_id", vote.UserID,
		)
	}
	return updated, nil
}

func (r *Repository) ListVotes(ctx context.Context, regionID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("region_id = ?", strings.TrimSpace(regionID)).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("annotation_repo_list_votes_failed", err, "region_id", regionID)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

var _ ports.VoteLedger = (*Repository)(nil)
