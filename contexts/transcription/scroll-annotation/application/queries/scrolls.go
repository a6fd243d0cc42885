package queries

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	application "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/application"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type ListScrollsUseCase struct {
	Scrolls ports.ScrollRepository
}

func (u ListScrollsUseCase) Execute(ctx context.Context, principal identityv1.Principal) ([]entities.Scroll, error) {
	if err := application.RequireReader(principal); err != nil {
		return nil, err
	}
	return u.Scrolls.ListScrolls(ctx)
}

type GetScrollUseCase struct {
	Scrolls ports.ScrollRepository
}

func (u GetScrollUseCase) Execute(ctx context.Context, principal identityv1.Principal, scrollID string) (entities.Scroll, error) {
	if err := application.RequireReader(principal); err != nil {
		return entities.Scroll{}, err
	}
	return u.Scrolls.GetScroll(ctx, strings.TrimSpace(scrollID))
}

// ScrollImage is an open image stream. Callers must close Content.
type ScrollImage struct {
	Key         string
	ContentType string
	Content     io.ReadCloser
}

type ScrollImageUseCase struct {
	Scrolls ports.ScrollRepository
	Images  ports.ImageStore
}

func (u ScrollImageUseCase) Execute(ctx context.Context, principal identityv1.Principal, scrollID string) (ScrollImage, error) {
	if err := application.RequireReader(principal); err != nil {
		return ScrollImage{}, err
	}
	scroll, err := u.Scrolls.GetScroll(ctx, strings.TrimSpace(scrollID))
	if err != nil {
		return ScrollImage{}, err
	}
	content, err := u.Images.Open(ctx, scroll.ImageKey)
	if err != nil {
		return ScrollImage{}, err
	}
	contentType := mime.TypeByExtension(path.Ext(scroll.ImageKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ScrollImage{Key: scroll.ImageKey, ContentType: contentType, Content: content}, nil
}
