package unit

import (
	"bytes"
	"context"
	"testing"
	"time"

	annotation "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

var annotationEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func principalWithTier(userID string, tier identityv1.PermissionTier) identityv1.Principal {
	return identityv1.Principal{
		UserID:        userID,
		Username:      userID,
		Tier:          tier,
		Authenticated: true,
	}
}

// newAnnotationFixture returns a module holding one scroll "PHerc-172" with one
// region "region-1" authored by "writer-1".
func newAnnotationFixture(t *testing.T) annotation.Module {
	t.Helper()
	module := annotation.NewInMemoryModule(nil, nil, nil)
	module.Store.SetNow(annotationEpoch)

	admin := principalWithTier("admin-1", identityv1.TierAdmin)
	_, err := module.Handler.CreateScrollHandler(context.Background(), admin, httptransport.ScrollMetadataRequest{
		ScrollID:    "PHerc-172",
		DisplayName: "PHerc. 172",
		Description: "Villa dei Papiri",
	}, ".png", bytes.NewReader([]byte("png-bytes")))
	if err != nil {
		t.Fatalf("create scroll failed: %v", err)
	}

	module.Store.QueueIDs("region-1")
	_, err = module.Handler.CreateRegionHandler(
		context.Background(),
		principalWithTier("writer-1", identityv1.TierWrite),
		"PHerc-172",
		regionRequest(10, 20, 100, 40, "ΦΙΛΟΔΗΜΟΥ"),
	)
	if err != nil {
		t.Fatalf("create region failed: %v", err)
	}
	return module
}

func regionRequest(x, y, width, height float64, transcription string) httptransport.RegionRequest {
	return httptransport.RegionRequest{
		Coordinates: httptransport.CoordinatesPayload{
			X:      x,
			Y:      y,
			Width:  width,
			Height: height,
		},
		Transcription: transcription,
	}
}

func voteRequest(value int) httptransport.VoteRequest {
	return httptransport.VoteRequest{Value: &value}
}
