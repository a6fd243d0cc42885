package services

import (
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
)

// Certainty is the arithmetic mean of the vote values, or
// entities.NoVotesCertainty for an empty vote set.
func Certainty(values []int) float64 {
	if len(values) == 0 {
		return entities.NoVotesCertainty
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// NextUpdatedAt returns the timestamp for a region mutation observed at now.
// Stamps are rounded up to the microsecond postgres keeps, so a stamp is never
// earlier than the write it marks, and never at or before previous, so the
// delta-sync cursor only moves forward even when the clock stalls or steps
// back.
func NextUpdatedAt(previous time.Time, now time.Time) time.Time {
	now = CeilMicrosecond(now)
	if previous.IsZero() {
		return now
	}
	floor := CeilMicrosecond(previous).Add(time.Microsecond)
	if now.Before(floor) {
		return floor
	}
	return now
}

// CeilMicrosecond rounds t up to the next whole microsecond in UTC.
func CeilMicrosecond(t time.Time) time.Time {
	t = t.UTC()
	truncated := t.Truncate(time.Microsecond)
	if truncated.Before(t) {
		return truncated.Add(time.Microsecond)
	}
	return truncated
}

// SyncCursor rounds t down to the microsecond. A cursor taken before a write
// is then strictly below that write's NextUpdatedAt stamp.
func SyncCursor(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
