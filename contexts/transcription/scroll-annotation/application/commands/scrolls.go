package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type CreateScrollCommand struct {
	Principal identityv1.Principal
	Metadata  entities.ScrollMetadata
	// ImageExtension is taken from the uploaded file name, e.g. ".png".
	ImageExtension string
	Image          io.Reader
}

type UpdateScrollCommand struct {
	Principal identityv1.Principal
	ScrollID  string
	Metadata  entities.ScrollMetadata
}

type DeleteScrollCommand struct {
	Principal identityv1.Principal
	ScrollID  string
}

// ScrollCatalogUseCase manages scrolls and their images. Every mutation is
// restricted to admin and root.
type ScrollCatalogUseCase struct {
	Scrolls ports.ScrollRepository
	Images  ports.ImageStore
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (uc ScrollCatalogUseCase) CreateScroll(ctx context.Context, cmd CreateScrollCommand) (entities.Scroll, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireScrollManager(cmd.Principal); err != nil {
		return entities.Scroll{}, err
	}
	metadata := cmd.Metadata.Normalize()
	if err := validateScrollMetadata(metadata); err != nil {
		return entities.Scroll{}, err
	}
	if cmd.Image == nil {
		return entities.Scroll{}, domainerrors.ErrInvalidImage
	}
	extension, err := normalizeImageExtension(cmd.ImageExtension)
	if err != nil {
		return entities.Scroll{}, err
	}

	now := resolveNow(uc.Clock)
	scroll := entities.Scroll{
		ScrollID:     metadata.ScrollID,
		DisplayName:  metadata.DisplayName,
		Description:  metadata.Description,
		ThumbnailURL: metadata.ThumbnailURL,
		ImageKey:     entities.ImageKey(metadata.ScrollID, extension),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The row is written first so a duplicate id never touches the stored
	// image of the existing scroll.
	if err := uc.Scrolls.CreateScroll(ctx, scroll); err != nil {
		return entities.Scroll{}, err
	}
	if err := uc.Images.Put(ctx, scroll.ImageKey, cmd.Image); err != nil {
		logger.Error("scroll image store failed, removing scroll",
			"event", "annotation_scroll_image_put_failed",
			"module", "transcription/scroll-annotation",
			"layer", "application",
			"scroll_id", scroll.ScrollID,
			"error", err.Error(),
		)
		if deleteErr := uc.Scrolls.DeleteScroll(ctx, scroll.ScrollID); deleteErr != nil {
			return entities.Scroll{}, errors.Join(err, deleteErr)
		}
		return entities.Scroll{}, err
	}

	logger.Info("scroll created",
		"event", "annotation_scroll_created",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", scroll.ScrollID,
		"actor_id", cmd.Principal.UserID,
	)
	return scroll, nil
}

func (uc ScrollCatalogUseCase) UpdateScroll(ctx context.Context, cmd UpdateScrollCommand) (entities.Scroll, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireScrollManager(cmd.Principal); err != nil {
		return entities.Scroll{}, err
	}
	metadata := cmd.Metadata.Normalize()
	if err := validateScrollMetadata(metadata); err != nil {
		return entities.Scroll{}, err
	}

	current, err := uc.Scrolls.GetScroll(ctx, strings.TrimSpace(cmd.ScrollID))
	if err != nil {
		return entities.Scroll{}, err
	}
	updated := current
	updated.ScrollID = metadata.ScrollID
	updated.DisplayName = metadata.DisplayName
	updated.Description = metadata.Description
	updated.ThumbnailURL = metadata.ThumbnailURL
	updated.ImageKey = entities.ImageKey(metadata.ScrollID, path.Ext(current.ImageKey))
	updated.UpdatedAt = resolveNow(uc.Clock)

	if updated.ScrollID != current.ScrollID {
		if _, err := uc.Scrolls.GetScroll(ctx, updated.ScrollID); err == nil {
			return entities.Scroll{}, domainerrors.ErrScrollAlreadyExists
		} else if !errors.Is(err, domainerrors.ErrScrollNotFound) {
			return entities.Scroll{}, err
		}
	}

	renamed := updated.ImageKey != current.ImageKey
	if renamed {
		if err := uc.Images.Rename(ctx, current.ImageKey, updated.ImageKey); err != nil {
			return entities.Scroll{}, err
		}
	}
	if err := uc.Scrolls.UpdateScroll(ctx, current.ScrollID, updated); err != nil {
		if renamed {
			if revertErr := uc.Images.Rename(ctx, updated.ImageKey, current.ImageKey); revertErr != nil {
				logger.Error("scroll image rename revert failed",
					"event", "annotation_scroll_image_revert_failed",
					"module", "transcription/scroll-annotation",
					"layer", "application",
					"scroll_id", current.ScrollID,
					"error", revertErr.Error(),
				)
			}
		}
		return entities.Scroll{}, err
	}

	logger.Info("scroll updated",
		"event", "annotation_scroll_updated",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", updated.ScrollID,
		"previous_scroll_id", current.ScrollID,
		"actor_id", cmd.Principal.UserID,
	)
	return updated, nil
}

// DeleteScroll removes the scroll with its regions and votes, then its image.
func (uc ScrollCatalogUseCase) DeleteScroll(ctx context.Context, cmd DeleteScrollCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireScrollManager(cmd.Principal); err != nil {
		return err
	}
	scroll, err := uc.Scrolls.GetScroll(ctx, strings.TrimSpace(cmd.ScrollID))
	if err != nil {
		return err
	}
	if err := uc.Scrolls.DeleteScroll(ctx, scroll.ScrollID); err != nil {
		return err
	}
	if err := uc.Images.Delete(ctx, scroll.ImageKey); err != nil {
		logger.Error("scroll image delete failed",
			"event", "annotation_scroll_image_delete_failed",
			"module", "transcription/scroll-annotation",
			"layer", "application",
			"scroll_id", scroll.ScrollID,
			"image_key", scroll.ImageKey,
			"error", err.Error(),
		)
	}
	logger.Info("scroll deleted",
		"event", "annotation_scroll_deleted",
		"module", "transcription/scroll-annotation",
		"layer", "application",
		"scroll_id", scroll.ScrollID,
		"actor_id", cmd.Principal.UserID,
	)
	return nil
}
