package services

import (
	"testing"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type countingLookup struct {
	regions map[string]entities.Region
	calls   int
}

func (l *countingLookup) lookup(regionID string) (entities.Region, bool, error) {
	l.calls++
	region, ok := l.regions[regionID]
	return region, ok, nil
}

func principal(userID string, tier identityv1.PermissionTier) identityv1.Principal {
	return identityv1.Principal{UserID: userID, Username: userID, Tier: tier, Authenticated: true}
}

func TestCanModifyRegion(t *testing.T) {
	regions := map[string]entities.Region{
		"region-own":   {RegionID: "region-own", AuthorID: "writer-1"},
		"region-other": {RegionID: "region-other", AuthorID: "writer-2"},
	}

	cases := []struct {
		name      string
		principal identityv1.Principal
		regionID  string
		want      bool
		lookups   int
	}{
		{name: "anonymous", principal: identityv1.Anonymous(), regionID: "region-own", want: false, lookups: 0},
		{name: "read tier", principal: principal("reader-1", identityv1.TierRead), regionID: "region-own", want: false, lookups: 0},
		{name: "read tier on missing region", principal: principal("reader-1", identityv1.TierRead), regionID: "missing", want: false, lookups: 0},
		{name: "admin short-circuits", principal: principal("admin-1", identityv1.TierAdmin), regionID: "region-other", want: true, lookups: 0},
		{name: "root short-circuits", principal: principal("root-1", identityv1.TierRoot), regionID: "missing", want: true, lookups: 0},
		{name: "writer on own region", principal: principal("writer-1", identityv1.TierWrite), regionID: "region-own", want: true, lookups: 1},
		{name: "writer on other region", principal: principal("writer-1", identityv1.TierWrite), regionID: "region-other", want: false, lookups: 1},
		{name: "writer on missing region", principal: principal("writer-1", identityv1.TierWrite), regionID: "missing", want: true, lookups: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lookup := &countingLookup{regions: regions}
			got, err := CanModifyRegion(tc.principal, tc.regionID, lookup.lookup)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if lookup.calls != tc.lookups {
				t.Fatalf("expected %d lookups, got %d", tc.lookups, lookup.calls)
			}
		})
	}
}

func TestCertainty(t *testing.T) {
	if got := Certainty(nil); got != entities.NoVotesCertainty {
		t.Fatalf("expected sentinel for empty vote set, got %f", got)
	}
	if got := Certainty([]int{3, 5}); got != 4.0 {
		t.Fatalf("expected 4.0, got %f", got)
	}
	if got := Certainty([]int{1, 5}); got != 3.0 {
		t.Fatalf("expected 3.0, got %f", got)
	}
	if got := Certainty([]int{0}); got != 0 {
		t.Fatalf("expected 0 for a single zero vote, got %f", got)
	}
}

func TestNextUpdatedAtNeverMovesBackward(t *testing.T) {
	previous := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := NextUpdatedAt(previous, previous.Add(time.Second)); !got.Equal(previous.Add(time.Second)) {
		t.Fatalf("expected wall clock when it is ahead, got %s", got)
	}
	if got := NextUpdatedAt(previous, previous); !got.After(previous) {
		t.Fatalf("expected strictly later timestamp on a stalled clock, got %s", got)
	}
	if got := NextUpdatedAt(previous, previous.Add(-time.Hour)); !got.After(previous) {
		t.Fatalf("expected strictly later timestamp on a clock step back, got %s", got)
	}
	now := previous.Add(time.Minute)
	if got := NextUpdatedAt(time.Time{}, now); !got.Equal(now) {
		t.Fatalf("expected now for a new region, got %s", got)
	}
}

func TestStampsStayAboveCursorWithinOneMicrosecond(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cursor := SyncCursor(base.Add(700 * time.Nanosecond))
	stamp := NextUpdatedAt(base.Add(-time.Hour), base.Add(900*time.Nanosecond))
	if !stamp.After(cursor) {
		t.Fatalf("expected stamp %s after cursor %s", stamp, cursor)
	}
	if !stamp.Equal(base.Add(time.Microsecond)) {
		t.Fatalf("expected stamp rounded up to the microsecond, got %s", stamp)
	}
	if got := CeilMicrosecond(base); !got.Equal(base) {
		t.Fatalf("expected whole microsecond unchanged, got %s", got)
	}
	if got := NextUpdatedAt(time.Time{}, base.Add(time.Nanosecond)); !got.Equal(base.Add(time.Microsecond)) {
		t.Fatalf("expected first stamp rounded up, got %s", got)
	}
}
