package commands

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
)

const (
	maxScrollIDLength     = 64
	maxDisplayNameLength  = 200
	maxTranscriptionRunes = 10000
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// validateScrollID accepts ids that are safe as both URL segments and file
// names.
func validateScrollID(scrollID string) error {
	if scrollID == "" || len(scrollID) > maxScrollIDLength || strings.HasPrefix(scrollID, ".") {
		return domainerrors.ErrInvalidScrollID
	}
	for _, r := range scrollID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return domainerrors.ErrInvalidScrollID
		}
	}
	return nil
}

func validateScrollMetadata(metadata entities.ScrollMetadata) error {
	if err := validateScrollID(metadata.ScrollID); err != nil {
		return err
	}
	if metadata.DisplayName == "" || utf8.RuneCountInString(metadata.DisplayName) > maxDisplayNameLength {
		return domainerrors.ErrInvalidScrollMetadata
	}
	return nil
}

func normalizeImageExtension(extension string) (string, error) {
	extension = strings.ToLower(strings.TrimSpace(extension))
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	if !allowedImageExtensions[extension] {
		return "", domainerrors.ErrInvalidImage
	}
	return extension, nil
}

func validateRegionDraft(draft entities.RegionDraft) error {
	if !draft.Coordinates.Valid() {
		return domainerrors.ErrInvalidCoordinates
	}
	if !utf8.ValidString(draft.Transcription) || utf8.RuneCountInString(draft.Transcription) > maxTranscriptionRunes {
		return domainerrors.ErrInvalidTranscription
	}
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func resolveClock(clock ports.Clock) ports.Clock {
	if clock != nil {
		return clock
	}
	return systemClock{}
}

func resolveNow(clock ports.Clock) time.Time {
	return resolveClock(clock).Now().UTC()
}
