package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the scrolls, regions and votes tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&scrollModel{}, &regionModel{}, &voteModel{}); err != nil {
		return r.logError("annotation_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateScroll(ctx context.Context, scroll entities.Scroll) error {
	row := scrollModelFromEntity(scroll)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrScrollAlreadyExists
		}
		return r.logError("annotation_repo_create_scroll_failed", err, "scroll_id", row.ID)
	}
	return nil
}

// UpdateScroll rewrites the scroll row and, on an id change, moves its
// regions to the new id in the same transaction.
func (r *Repository) UpdateScroll(ctx context.Context, previousID string, scroll entities.Scroll) error {
	previousID = strings.TrimSpace(previousID)
	row := scrollModelFromEntity(scroll)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current scrollModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", previousID).
			First(&current).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrScrollNotFound
			}
			return err
		}
		if err := tx.Model(&scrollModel{}).
			Where("id = ?", previousID).
			Updates(map[string]any{
				"id":            row.ID,
				"display_name":  row.DisplayName,
				"description":   row.Description,
				"image_key":     row.ImageKey,
				"thumbnail_url": row.ThumbnailURL,
				"updated_at":    row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		if row.ID == previousID {
			return nil
		}
		return tx.Model(&regionModel{}).
			Where("scroll_id = ?", previousID).
			Update("scroll_id", row.ID).
			Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrScrollNotFound) {
			return err
		}
		if isUniqueViolation(err) {
			return domainerrors.ErrScrollAlreadyExists
		}
		return r.logError("annotation_repo_update_scroll_failed", err,
			"scroll_id", previousID,
			"new_scroll_id", row.ID,
		)
	}
	return nil
}

// DeleteScroll removes votes, regions and the scroll row in one transaction.
// The scroll row is locked first, which waits out region inserts holding it
// FOR SHARE, and the regions are locked next, which waits out vote
// transactions. Writers arriving later find the scroll or region gone.
func (r *Repository) DeleteScroll(ctx context.Context, scrollID string) error {
	scrollID = strings.TrimSpace(scrollID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scroll scrollModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", scrollID).
			First(&scroll).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrScrollNotFound
			}
			return err
		}

		var regionIDs []string
		if err := tx.Model(&regionModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scroll_id = ?", scrollID).
			Order("id ASC").
			Pluck("id", &regionIDs).
			Error; err != nil {
			return err
		}
		if len(regionIDs) > 0 {
			if err := tx.Where("region_id IN ?", regionIDs).Delete(&voteModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", regionIDs).Delete(&regionModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", scrollID).Delete(&scrollModel{}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrScrollNotFound) {
			return err
		}
		return r.logError("annotation_repo_delete_scroll_failed", err, "scroll_id", scrollID)
	}
	return nil
}

func (r *Repository) GetScroll(ctx context.Context, scrollID string) (entities.Scroll, error) {
	var row scrollModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(scrollID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Scroll{}, domainerrors.ErrScrollNotFound
		}
		return entities.Scroll{}, r.logError("annotation_repo_get_scroll_failed", err, "scroll_id", scrollID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListScrolls(ctx context.Context) ([]entities.Scroll, error) {
	var rows []scrollModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("annotation_repo_list_scrolls_failed", err)
	}
	items := make([]entities.Scroll, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "transcription/scroll-annotation",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("annotation repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ScrollRepository = (*Repository)(nil)
