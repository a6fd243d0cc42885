package entities

import "time"

const (
	MinVoteValue = 0
	MaxVoteValue = 5
)

// Vote is keyed by (UserID, RegionID); a user holds at most one vote per
// region.
type Vote struct {
	UserID    string
	RegionID  string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidVoteValue(value int) bool {
	return value >= MinVoteValue && value <= MaxVoteValue
}
