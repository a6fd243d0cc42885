package unit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	annotation "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

func TestDeltaSyncReturnsOnlyChangesAfterCursor(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	reader := principalWithTier("reader-1", identityv1.TierRead)
	writer := principalWithTier("writer-1", identityv1.TierWrite)

	module.Store.SetNow(annotationEpoch.Add(time.Minute))
	full, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", nil)
	if err != nil {
		t.Fatalf("full sync failed: %v", err)
	}
	if len(full.Regions) != 1 {
		t.Fatalf("expected 1 region on full load, got %d", len(full.Regions))
	}
	cursor := full.LastSyncTimestamp

	again, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", &cursor)
	if err != nil {
		t.Fatalf("idle sync failed: %v", err)
	}
	if len(again.Regions) != 0 {
		t.Fatalf("expected empty delta without changes, got %d", len(again.Regions))
	}

	module.Store.SetNow(annotationEpoch.Add(2 * time.Minute))
	module.Store.QueueIDs("region-2")
	if _, err := module.Handler.CreateRegionHandler(ctx, writer, "PHerc-172", regionRequest(5, 5, 10, 10, "ΕΠΙΚΟΥΡΟΥ")); err != nil {
		t.Fatalf("create region failed: %v", err)
	}
	if _, err := module.Handler.UpdateRegionHandler(ctx, writer, "PHerc-172", "region-1", regionRequest(10, 20, 120, 40, "ΦΙΛΟΔΗΜΟΥ ΠΕΡΙ")); err != nil {
		t.Fatalf("update region failed: %v", err)
	}

	delta, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", &cursor)
	if err != nil {
		t.Fatalf("delta sync failed: %v", err)
	}
	if len(delta.Regions) != 2 {
		t.Fatalf("expected 2 changed regions, got %d", len(delta.Regions))
	}
	if !delta.LastSyncTimestamp.After(cursor) {
		t.Fatalf("expected cursor to advance, got %s after %s", delta.LastSyncTimestamp, cursor)
	}

	next := delta.LastSyncTimestamp
	module.Store.SetNow(annotationEpoch.Add(3 * time.Minute))
	repeat, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", &next)
	if err != nil {
		t.Fatalf("repeat sync failed: %v", err)
	}
	if len(repeat.Regions) != 0 {
		t.Fatalf("expected idempotent empty delta, got %d", len(repeat.Regions))
	}
}

func TestDeltaSyncDeliversWritesInCursorMicrosecond(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	reader := principalWithTier("reader-1", identityv1.TierRead)
	writer := principalWithTier("writer-1", identityv1.TierWrite)
	base := annotationEpoch.Add(time.Minute)

	module.Store.SetNow(base.Add(700 * time.Nanosecond))
	full, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", nil)
	if err != nil {
		t.Fatalf("full sync failed: %v", err)
	}
	cursor := full.LastSyncTimestamp

	module.Store.SetNow(base.Add(900 * time.Nanosecond))
	if _, err := module.Handler.UpdateRegionHandler(ctx, writer, "PHerc-172", "region-1", regionRequest(12, 20, 100, 40, "ΦΙΛΟΔΗΜΟΥ ΠΕΡΙ")); err != nil {
		t.Fatalf("update region failed: %v", err)
	}

	delta, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", &cursor)
	if err != nil {
		t.Fatalf("delta sync failed: %v", err)
	}
	if len(delta.Regions) != 1 || delta.Regions[0].Transcription != "ΦΙΛΟΔΗΜΟΥ ΠΕΡΙ" {
		t.Fatalf("expected the update made after the cursor, got %+v", delta.Regions)
	}

	cursor = delta.LastSyncTimestamp
	module.Store.SetNow(base.Add(950 * time.Nanosecond))
	if _, err := module.Handler.CastVoteHandler(ctx, principalWithTier("writer-2", identityv1.TierWrite), "PHerc-172", "region-1", voteRequest(4)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	delta, err = module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-172", &cursor)
	if err != nil {
		t.Fatalf("delta sync after vote failed: %v", err)
	}
	if len(delta.Regions) != 1 || delta.Regions[0].CertaintyScore != 4 {
		t.Fatalf("expected the voted region after the cursor, got %+v", delta.Regions)
	}
}

func TestDeltaSyncRequiresAuthenticationAndScroll(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()

	if _, err := module.Handler.SyncRegionsHandler(ctx, identityv1.Anonymous(), "PHerc-172", nil); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	reader := principalWithTier("reader-1", identityv1.TierRead)
	if _, err := module.Handler.SyncRegionsHandler(ctx, reader, "PHerc-404", nil); !errors.Is(err, domainerrors.ErrScrollNotFound) {
		t.Fatalf("expected scroll not found, got %v", err)
	}
}

func TestRegionModificationPolicy(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	req := regionRequest(1, 1, 5, 5, "edited")

	cases := []struct {
		name      string
		principal identityv1.Principal
		want      error
	}{
		{"anonymous", identityv1.Anonymous(), domainerrors.ErrUnauthenticated},
		{"read tier", principalWithTier("reader-1", identityv1.TierRead), domainerrors.ErrForbidden},
		{"other writer", principalWithTier("writer-2", identityv1.TierWrite), domainerrors.ErrForbidden},
		{"author", principalWithTier("writer-1", identityv1.TierWrite), nil},
		{"admin", principalWithTier("admin-1", identityv1.TierAdmin), nil},
		{"root", principalWithTier("root-1", identityv1.TierRoot), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := module.Handler.UpdateRegionHandler(ctx, tc.principal, "PHerc-172", "region-1", req)
			if tc.want == nil && err != nil {
				t.Fatalf("expected update allowed, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	permission, err := module.Handler.RegionPermissionHandler(ctx, principalWithTier("writer-2", identityv1.TierWrite), "PHerc-172", "region-1")
	if err != nil || permission.CanModify {
		t.Fatalf("expected other writer to be refused, got %+v err=%v", permission, err)
	}
	permission, err = module.Handler.RegionPermissionHandler(ctx, principalWithTier("writer-1", identityv1.TierWrite), "PHerc-172", "region-1")
	if err != nil || !permission.CanModify {
		t.Fatalf("expected author to be allowed, got %+v err=%v", permission, err)
	}
}

func TestRegionPermissionIsScopedToScroll(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	admin := principalWithTier("admin-1", identityv1.TierAdmin)

	if _, err := module.Handler.CreateScrollHandler(ctx, admin, httptransport.ScrollMetadataRequest{
		ScrollID:    "PHerc-118",
		DisplayName: "PHerc. 118",
	}, ".png", bytes.NewReader([]byte("png-bytes"))); err != nil {
		t.Fatalf("create scroll failed: %v", err)
	}

	author := principalWithTier("writer-1", identityv1.TierWrite)
	if _, err := module.Handler.RegionPermissionHandler(ctx, author, "PHerc-118", "region-1"); !errors.Is(err, domainerrors.ErrRegionNotFound) {
		t.Fatalf("expected region not found under another scroll, got %v", err)
	}
	if _, err := module.Handler.RegionPermissionHandler(ctx, admin, "PHerc-118", "region-1"); !errors.Is(err, domainerrors.ErrRegionNotFound) {
		t.Fatalf("expected region not found for admin under another scroll, got %v", err)
	}
	if _, err := module.Handler.RegionPermissionHandler(ctx, author, "PHerc-172", "region-404"); !errors.Is(err, domainerrors.ErrRegionNotFound) {
		t.Fatalf("expected missing region not found, got %v", err)
	}
}

func TestRegionValidationAndScope(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	writer := principalWithTier("writer-1", identityv1.TierWrite)

	if _, err := module.Handler.CreateRegionHandler(ctx, writer, "PHerc-172", regionRequest(0, 0, 0, 10, "")); !errors.Is(err, domainerrors.ErrInvalidCoordinates) {
		t.Fatalf("expected invalid coordinates, got %v", err)
	}
	if _, err := module.Handler.CreateRegionHandler(ctx, writer, "PHerc-404", regionRequest(0, 0, 1, 1, "")); !errors.Is(err, domainerrors.ErrScrollNotFound) {
		t.Fatalf("expected scroll not found, got %v", err)
	}
	if _, err := module.Handler.CreateRegionHandler(ctx, principalWithTier("reader-1", identityv1.TierRead), "PHerc-172", regionRequest(0, 0, 1, 1, "")); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for read tier, got %v", err)
	}
	if err := module.Handler.DeleteRegionHandler(ctx, writer, "PHerc-1471", "region-1"); !errors.Is(err, domainerrors.ErrRegionNotFound) {
		t.Fatalf("expected region not found under another scroll, got %v", err)
	}
}

func TestDeleteRegionRemovesVotes(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	if _, err := module.Handler.CastVoteHandler(ctx, principalWithTier("alice", identityv1.TierWrite), "PHerc-172", "region-1", voteRequest(2)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if err := module.Handler.DeleteRegionHandler(ctx, principalWithTier("writer-1", identityv1.TierWrite), "PHerc-172", "region-1"); err != nil {
		t.Fatalf("delete region failed: %v", err)
	}
	votes, err := module.Store.ListVotes(ctx, "region-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("expected votes removed with region, got %d", len(votes))
	}
}

func TestDeleteScrollCascades(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	admin := principalWithTier("admin-1", identityv1.TierAdmin)
	if _, err := module.Handler.CastVoteHandler(ctx, principalWithTier("alice", identityv1.TierWrite), "PHerc-172", "region-1", voteRequest(2)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if err := module.Handler.DeleteScrollHandler(ctx, principalWithTier("writer-1", identityv1.TierWrite), "PHerc-172"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected writer delete to be forbidden, got %v", err)
	}
	if err := module.Handler.DeleteScrollHandler(ctx, admin, "PHerc-172"); err != nil {
		t.Fatalf("delete scroll failed: %v", err)
	}

	if _, err := module.Store.GetRegion(ctx, "region-1"); !errors.Is(err, domainerrors.ErrRegionNotFound) {
		t.Fatalf("expected region removed, got %v", err)
	}
	if votes, _ := module.Store.ListVotes(ctx, "region-1"); len(votes) != 0 {
		t.Fatalf("expected votes removed, got %d", len(votes))
	}
	if _, err := module.Store.Open(ctx, "PHerc-172.png"); !errors.Is(err, domainerrors.ErrImageNotFound) {
		t.Fatalf("expected image removed, got %v", err)
	}
	if _, err := module.Handler.GetScrollHandler(ctx, admin, "PHerc-172"); !errors.Is(err, domainerrors.ErrScrollNotFound) {
		t.Fatalf("expected scroll removed, got %v", err)
	}
}

func TestRenameScrollMovesRegionsAndImage(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	admin := principalWithTier("admin-1", identityv1.TierAdmin)

	updated, err := module.Handler.UpdateScrollHandler(ctx, admin, "PHerc-172", httptransport.ScrollMetadataRequest{
		ScrollID:    "PHerc-0172",
		DisplayName: "PHerc. 172 (renumbered)",
	})
	if err != nil {
		t.Fatalf("rename scroll failed: %v", err)
	}
	if updated.ImageURL != "/scrolls/PHerc-0172/image" {
		t.Fatalf("unexpected image url %q", updated.ImageURL)
	}

	region, err := module.Store.GetRegion(ctx, "region-1")
	if err != nil || region.ScrollID != "PHerc-0172" {
		t.Fatalf("expected region moved to renamed scroll, got %+v err=%v", region, err)
	}
	image, err := module.Handler.ScrollImageHandler(ctx, admin, "PHerc-0172")
	if err != nil {
		t.Fatalf("open renamed image failed: %v", err)
	}
	defer image.Content.Close()
	data, _ := io.ReadAll(image.Content)
	if string(data) != "png-bytes" || image.ContentType != "image/png" {
		t.Fatalf("unexpected image %q (%s)", data, image.ContentType)
	}
}

func TestCreateScrollRejectsDuplicatesAndBadInput(t *testing.T) {
	module := newAnnotationFixture(t)
	ctx := context.Background()
	admin := principalWithTier("admin-1", identityv1.TierAdmin)
	meta := httptransport.ScrollMetadataRequest{ScrollID: "PHerc-172", DisplayName: "duplicate"}

	if _, err := module.Handler.CreateScrollHandler(ctx, admin, meta, ".png", bytes.NewReader([]byte("other"))); !errors.Is(err, domainerrors.ErrScrollAlreadyExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	image, err := module.Handler.ScrollImageHandler(ctx, admin, "PHerc-172")
	if err != nil {
		t.Fatalf("open image failed: %v", err)
	}
	data, _ := io.ReadAll(image.Content)
	_ = image.Content.Close()
	if string(data) != "png-bytes" {
		t.Fatalf("expected original image kept, got %q", data)
	}

	bad := []struct {
		name string
		meta httptransport.ScrollMetadataRequest
		ext  string
		want error
	}{
		{"path id", httptransport.ScrollMetadataRequest{ScrollID: "../etc", DisplayName: "x"}, ".png", domainerrors.ErrInvalidScrollID},
		{"no name", httptransport.ScrollMetadataRequest{ScrollID: "PHerc-1", DisplayName: " "}, ".png", domainerrors.ErrInvalidScrollMetadata},
		{"bad extension", httptransport.ScrollMetadataRequest{ScrollID: "PHerc-1", DisplayName: "x"}, ".exe", domainerrors.ErrInvalidImage},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := module.Handler.CreateScrollHandler(ctx, admin, tc.meta, tc.ext, bytes.NewReader([]byte("x")))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	writer := principalWithTier("writer-1", identityv1.TierWrite)
	if _, err := module.Handler.CreateScrollHandler(ctx, writer, httptransport.ScrollMetadataRequest{ScrollID: "PHerc-2", DisplayName: "x"}, ".png", bytes.NewReader(nil)); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for writer, got %v", err)
	}
}

func TestListScrollsOrderedByID(t *testing.T) {
	module := annotation.NewInMemoryModule(nil, nil, nil)
	ctx := context.Background()
	admin := principalWithTier("root-1", identityv1.TierRoot)
	for _, id := range []string{"PHerc-1471", "PHerc-118", "PHerc-172"} {
		meta := httptransport.ScrollMetadataRequest{ScrollID: id, DisplayName: id}
		if _, err := module.Handler.CreateScrollHandler(ctx, admin, meta, "jpg", bytes.NewReader([]byte(id))); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}
	list, err := module.Handler.ListScrollsHandler(ctx, principalWithTier("reader-1", identityv1.TierRead))
	if err != nil {
		t.Fatalf("list scrolls failed: %v", err)
	}
	if len(list.Items) != 3 || list.Items[0].ScrollID != "PHerc-118" || list.Items[2].ScrollID != "PHerc-172" {
		t.Fatalf("unexpected scroll order %+v", list.Items)
	}
	if _, err := module.Handler.ListScrollsHandler(ctx, identityv1.Anonymous()); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
