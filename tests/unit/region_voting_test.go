package unit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

func TestRegionVotingMeanAndRevote(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	alice := principalWithTier("alice", identityv1.TierWrite)
	bob := principalWithTier("bob", identityv1.TierWrite)

	if _, err := module.Handler.CastVoteHandler(ctx, alice, "PHerc-172", "region-1", voteRequest(3)); err != nil {
		t.Fatalf("alice vote failed: %v", err)
	}
	region, err := module.Handler.CastVoteHandler(ctx, bob, "PHerc-172", "region-1", voteRequest(5))
	if err != nil {
		t.Fatalf("bob vote failed: %v", err)
	}
	if region.CertaintyScore != 4.0 {
		t.Fatalf("expected certainty 4.0, got %f", region.CertaintyScore)
	}

	region, err = module.Handler.CastVoteHandler(ctx, alice, "PHerc-172", "region-1", voteRequest(1))
	if err != nil {
		t.Fatalf("alice revote failed: %v", err)
	}
	if region.CertaintyScore != 3.0 {
		t.Fatalf("expected certainty 3.0 after revote, got %f", region.CertaintyScore)
	}

	votes, err := module.Handler.ListVotesHandler(ctx, alice, "PHerc-172", "region-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes.Items) != 2 {
		t.Fatalf("expected one vote per user, got %d", len(votes.Items))
	}
	if votes.Items[0].UserID != "alice" || votes.Items[0].Value != 1 {
		t.Fatalf("expected alice's vote replaced with 1, got %+v", votes.Items[0])
	}
}

func TestRegionWithoutVotesCarriesSentinel(t *testing.T) {
	module := newAnnotationFixture(t)
	delta, err := module.Handler.SyncRegionsHandler(
		context.Background(),
		principalWithTier("reader-1", identityv1.TierRead),
		"PHerc-172",
		nil,
	)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if len(delta.Regions) != 1 || delta.Regions[0].CertaintyScore != entities.NoVotesCertainty {
		t.Fatalf("expected one region with certainty -1, got %+v", delta.Regions)
	}
}

func TestCastVoteAccessAndValidation(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	writer := principalWithTier("writer-2", identityv1.TierWrite)

	cases := []struct {
		name      string
		principal identityv1.Principal
		scrollID  string
		regionID  string
		req       httptransport.VoteRequest
		want      error
	}{
		{"anonymous", identityv1.Anonymous(), "PHerc-172", "region-1", voteRequest(4), domainerrors.ErrUnauthenticated},
		{"read tier", principalWithTier("reader-1", identityv1.TierRead), "PHerc-172", "region-1", voteRequest(4), domainerrors.ErrForbidden},
		{"anonymous missing value", identityv1.Anonymous(), "PHerc-172", "region-1", httptransport.VoteRequest{}, domainerrors.ErrUnauthenticated},
		{"missing value", writer, "PHerc-172", "region-1", httptransport.VoteRequest{}, domainerrors.ErrInvalidVoteValue},
		{"value too high", writer, "PHerc-172", "region-1", voteRequest(6), domainerrors.ErrInvalidVoteValue},
		{"negative value", writer, "PHerc-172", "region-1", voteRequest(-1), domainerrors.ErrInvalidVoteValue},
		{"unknown region", writer, "PHerc-172", "region-404", voteRequest(2), domainerrors.ErrRegionNotFound},
		{"other scroll", writer, "PHerc-1471", "region-1", voteRequest(2), domainerrors.ErrRegionNotFound},
		{"no stored identity", identityv1.Principal{Tier: identityv1.TierWrite, Authenticated: true}, "PHerc-172", "region-1", voteRequest(2), domainerrors.ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := module.Handler.CastVoteHandler(ctx, tc.principal, tc.scrollID, tc.regionID, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	votes, err := module.Handler.ListVotesHandler(ctx, writer, "PHerc-172", "region-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes.Items) != 0 {
		t.Fatalf("expected rejected votes to leave no ballots, got %d", len(votes.Items))
	}
}

func TestAuthorMayVoteOnOwnRegion(t *testing.T) {
	module := newAnnotationFixture(t)
	region, err := module.Handler.CastVoteHandler(
		context.Background(),
		principalWithTier("writer-1", identityv1.TierWrite),
		"PHerc-172",
		"region-1",
		voteRequest(5),
	)
	if err != nil {
		t.Fatalf("author vote failed: %v", err)
	}
	if region.CertaintyScore != 5.0 {
		t.Fatalf("expected certainty 5.0, got %f", region.CertaintyScore)
	}
}

func TestConcurrentVotesConvergeOnMean(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()

	const voters = 40
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	sum := 0
	for i := 0; i < voters; i++ {
		value := i % 6
		sum += value
		wg.Add(1)
		go func(userID string, value int) {
			defer wg.Done()
			_, err := module.Handler.CastVoteHandler(ctx, principalWithTier(userID, identityv1.TierWrite), "PHerc-172", "region-1", voteRequest(value))
			errs <- err
		}(fmt.Sprintf("voter-%02d", i), value)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent vote failed: %v", err)
		}
	}

	region, err := module.Store.GetRegion(ctx, "region-1")
	if err != nil {
		t.Fatalf("get region failed: %v", err)
	}
	want := float64(sum) / voters
	if region.CertaintyScore != want {
		t.Fatalf("expected certainty %f, got %f", want, region.CertaintyScore)
	}
	votes, err := module.Store.ListVotes(ctx, "region-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != voters {
		t.Fatalf("expected %d votes, got %d", voters, len(votes))
	}
}

func TestCancelledVoteLeavesNoBallot(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := module.Handler.CastVoteHandler(ctx, principalWithTier("alice", identityv1.TierWrite), "PHerc-172", "region-1", voteRequest(4))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	votes, err := module.Store.ListVotes(context.Background(), "region-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("expected no ballots, got %d", len(votes))
	}
}
