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

func (r *Repository) CreateRegion(ctx context.Context, region entities.Region) error {
	row := regionModelFromEntity(region)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share-lock the scroll. DeleteScroll takes the same row FOR UPDATE
		// before it reads the regions, so it waits for this insert to commit.
		var scroll scrollModel
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", row.ScrollID).
			First(&scroll).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrScrollNotFound
			}
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrScrollNotFound) {
			return err
		}
		return r.logError("annotation_repo_create_region_failed", err,
			"scroll_id", row.ScrollID,
			"region_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) UpdateRegion(
	ctx context.Context,
	scrollID string,
	regionID string,
	draft entities.RegionDraft,
	clock ports.Clock,
) (entities.Region, error) {
	var updated entities.Region
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRegion(tx, scrollID, regionID)
		if err != nil {
			return err
		}
		row.X = draft.Coordinates.X
		row.Y = draft.Coordinates.Y
		row.Width = draft.Coordinates.Width
		row.Height = draft.Coordinates.Height
		row.Transcription = draft.Transcription
		row.UpdatedAt = services.NextUpdatedAt(row.UpdatedAt, clock.Now())
		if err := tx.Model(&regionModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"x":             row.X,
				"y":             row.Y,
				"width":         row.Width,
				"height":        row.Height,
				"transcription": row.Transcription,
				"updated_at":    row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		updated = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRegionNotFound) {
			return entities.Region{}, err
		}
		return entities.Region{}, r.logError("annotation_repo_update_region_failed", err, "region_id", regionID)
	}
	return updated, nil
}

func (r *Repository) DeleteRegion(ctx context.Context, scrollID string, regionID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRegion(tx, scrollID, regionID)
		if err != nil {
			return err
		}
		if err := tx.Where("region_id = ?", row.ID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", row.ID).Delete(&regionModel{}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRegionNotFound) {
			return err
		}
		return r.logError("annotation_repo_delete_region_failed", err, "region_id", regionID)
	}
	return nil
}

func (r *Repository) GetRegion(ctx context.Context, regionID string) (entities.Region, error) {
	var row regionModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(regionID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Region{}, domainerrors.ErrRegionNotFound
		}
		return entities.Region{}, r.logError("annotation_repo_get_region_failed", err, "region_id", regionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRegions(ctx context.Context, scrollID string, since *time.Time) ([]entities.Region, error) {
	query := r.db.WithContext(ctx).Where("scroll_id = ?", strings.TrimSpace(scrollID))
	if since != nil {
		query = query.Where("updated_at > ?", since.UTC())
	}
	var rows []regionModel
	if err := query.Order("updated_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("annotation_repo_list_regions_failed", err, "scroll_id", scrollID)
	}
	items := make([]entities.Region, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// lockRegion reads a region row FOR UPDATE and checks it belongs to scrollID.
func lockRegion(tx *gorm.DB, scrollID string, regionID string) (regionModel, error) {
	var row regionModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", strings.TrimSpace(regionID)).
		First(&row).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return regionModel{}, domainerrors.ErrRegionNotFound
		}
		return regionModel{}, err
	}
	if row.ScrollID != strings.TrimSpace(scrollID) {
		return regionModel{}, domainerrors.ErrRegionNotFound
	}
	return row, nil
}

var _ ports.RegionRepository = (*Repository)(nil)
