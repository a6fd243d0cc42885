package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestRepository connects to TEST_POSTGRES_DSN and skips without it.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := NewRepository(db, slog.Default())
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func testRegion(scrollID string) entities.Region {
	now := SystemClock{}.Now().Truncate(time.Microsecond)
	return entities.Region{
		RegionID:       uuid.NewString(),
		ScrollID:       scrollID,
		AuthorID:       "writer-1",
		Coordinates:    entities.Coordinates{X: 1, Y: 1, Width: 10, Height: 10},
		Transcription:  "ΦΙΛΟΔΗΜΟΥ",
		CertaintyScore: entities.NoVotesCertainty,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestDeleteScrollLeavesNoOrphansUnderConcurrentWrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		scrollID := fmt.Sprintf("cascade-%s", uuid.NewString()[:8])
		now := SystemClock{}.Now()
		require.NoError(t, repo.CreateScroll(ctx, entities.Scroll{
			ScrollID:    scrollID,
			DisplayName: scrollID,
			ImageKey:    scrollID + ".png",
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
		base := testRegion(scrollID)
		require.NoError(t, repo.CreateRegion(ctx, base))

		var (
			mu        sync.Mutex
			regionIDs = []string{base.RegionID}
			wg        sync.WaitGroup
		)
		start := make(chan struct{})

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := repo.DeleteScroll(ctx, scrollID); err != nil {
				t.Errorf("delete scroll: %v", err)
			}
		}()
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				region := testRegion(scrollID)
				mu.Lock()
				regionIDs = append(regionIDs, region.RegionID)
				mu.Unlock()
				<-start
				if err := repo.CreateRegion(ctx, region); err != nil && !errors.Is(err, domainerrors.ErrScrollNotFound) {
					t.Errorf("create region: %v", err)
				}
			}()
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := repo.CastVote(ctx, scrollID, entities.Vote{
					UserID:   fmt.Sprintf("voter-%d", i),
					RegionID: base.RegionID,
					Value:    3,
				}, SystemClock{})
				if err != nil && !errors.Is(err, domainerrors.ErrRegionNotFound) {
					t.Errorf("cast vote: %v", err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		var regions, votes int64
		require.NoError(t, repo.db.Model(&regionModel{}).Where("scroll_id = ?", scrollID).Count(&regions).Error)
		require.NoError(t, repo.db.Model(&voteModel{}).Where("region_id IN ?", regionIDs).Count(&votes).Error)
		require.Zero(t, regions, "orphan regions in round %d", round)
		require.Zero(t, votes, "orphan votes in round %d", round)
	}
}

func TestCastVoteStampsAfterPreviousUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	scrollID := fmt.Sprintf("stamp-%s", uuid.NewString()[:8])
	now := SystemClock{}.Now()
	require.NoError(t, repo.CreateScroll(ctx, entities.Scroll{
		ScrollID:    scrollID,
		DisplayName: scrollID,
		ImageKey:    scrollID + ".png",
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
	region := testRegion(scrollID)
	region.UpdatedAt = region.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.CreateRegion(ctx, region))

	updated, err := repo.CastVote(ctx, scrollID, entities.Vote{UserID: "voter-1", RegionID: region.RegionID, Value: 5}, SystemClock{})
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(region.UpdatedAt))
	require.Equal(t, float64(5), updated.CertaintyScore)

	stored, err := repo.GetRegion(ctx, region.RegionID)
	require.NoError(t, err)
	require.True(t, stored.UpdatedAt.Equal(updated.UpdatedAt))

	require.NoError(t, repo.DeleteScroll(ctx, scrollID))
}
