package errors

import "errors"

var (
	ErrUnauthenticated        = errors.New("authentication required")
	ErrForbidden              = errors.New("access has been denied")
	ErrInvalidCredentials     = errors.New("caller is not backed by a stored user")
	ErrInvalidScrollID        = errors.New("invalid scroll id")
	ErrInvalidScrollMetadata  = errors.New("invalid scroll metadata")
	ErrInvalidImage           = errors.New("invalid scroll image")
	ErrInvalidRegionID        = errors.New("invalid region id")
	ErrInvalidCoordinates     = errors.New("invalid region coordinates")
	ErrInvalidTranscription   = errors.New("invalid transcription")
	ErrInvalidVoteValue       = errors.New("vote value must be between 0 and 5")
	ErrScrollNotFound         = errors.New("scroll not found")
	ErrRegionNotFound         = errors.New("region not found")
	ErrImageNotFound          = errors.New("scroll image not found")
	ErrScrollAlreadyExists    = errors.New("scroll already exists")
	ErrVoteTransactionTimeout = errors.New("vote transaction timed out")
)
