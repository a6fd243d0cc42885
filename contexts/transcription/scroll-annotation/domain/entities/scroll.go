package entities

import (
	"strings"
	"time"
)

type Scroll struct {
	ScrollID     string
	DisplayName  string
	Description  string
	ImageKey     string
	ThumbnailURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScrollMetadata is the client-editable part of a scroll.
type ScrollMetadata struct {
	ScrollID     string
	DisplayName  string
	Description  string
	ThumbnailURL string
}

func (m ScrollMetadata) Normalize() ScrollMetadata {
	return ScrollMetadata{
		ScrollID:     strings.TrimSpace(m.ScrollID),
		DisplayName:  strings.TrimSpace(m.DisplayName),
		Description:  strings.TrimSpace(m.Description),
		ThumbnailURL: strings.TrimSpace(m.ThumbnailURL),
	}
}

// ImageKey names the stored image of a scroll: the scroll id plus the
// original file extension.
func ImageKey(scrollID string, extension string) string {
	extension = strings.ToLower(strings.TrimSpace(extension))
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return scrollID + extension
}
