package postgresadapter

import "time"

// SystemClock reports UTC wall time at the microsecond precision postgres
// timestamps keep.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
