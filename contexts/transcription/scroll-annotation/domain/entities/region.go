package entities

import (
	"math"
	"time"
)

// NoVotesCertainty is the certainty score of a region nobody voted on.
const NoVotesCertainty = -1.0

type Coordinates struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Valid requires finite, non-negative origin and a positive extent.
func (c Coordinates) Valid() bool {
	for _, v := range []float64{c.X, c.Y, c.Width, c.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.X >= 0 && c.Y >= 0 && c.Width > 0 && c.Height > 0
}

type Region struct {
	RegionID       string
	ScrollID       string
	AuthorID       string
	Coordinates    Coordinates
	Transcription  string
	CertaintyScore float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RegionDraft carries the fields a client may set on create and update.
type RegionDraft struct {
	Coordinates   Coordinates
	Transcription string
}

// RegionDelta is a delta-sync page: the regions changed after the client
// cursor and the cursor to send next time.
type RegionDelta struct {
	Regions           []Region
	LastSyncTimestamp time.Time
}
