package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/services"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"

	"github.com/google/uuid"
)

type voteKey struct {
	userID   string
	regionID string
}

// Store keeps scrolls, regions, votes and images in process memory. One
// mutex guards everything, which makes every compound write atomic.
type Store struct {
	mu sync.RWMutex

	scrolls    map[string]entities.Scroll
	regions    map[string]entities.Region
	votes      map[voteKey]entities.Vote
	images     map[string][]byte
	fixedNow   time.Time
	idSequence []string
}

func NewStore(scrolls []entities.Scroll, regions []entities.Region) *Store {
	store := &Store{
		scrolls: make(map[string]entities.Scroll, len(scrolls)),
		regions: make(map[string]entities.Region, len(regions)),
		votes:   make(map[voteKey]entities.Vote),
		images:  make(map[string][]byte),
	}
	for _, scroll := range scrolls {
		store.scrolls[scroll.ScrollID] = scroll
	}
	for _, region := range regions {
		store.regions[region.RegionID] = region
	}
	return store
}

// SetNow pins the store clock. A zero time restores the wall clock.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedNow = now.UTC()
}

// QueueIDs makes NewID hand out the given ids before falling back to uuids.
func (s *Store) QueueIDs(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSequence = append(s.idSequence, ids...)
}

func (s *Store) CreateScroll(_ context.Context, scroll entities.Scroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scrolls[scroll.ScrollID]; exists {
		return domainerrors.ErrScrollAlreadyExists
	}
	s.scrolls[scroll.ScrollID] = scroll
	return nil
}

func (s *Store) UpdateScroll(_ context.Context, previousID string, scroll entities.Scroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previousID = strings.TrimSpace(previousID)
	if _, ok := s.scrolls[previousID]; !ok {
		return domainerrors.ErrScrollNotFound
	}
	if scroll.ScrollID != previousID {
		if _, exists := s.scrolls[scroll.ScrollID]; exists {
			return domainerrors.ErrScrollAlreadyExists
		}
		delete(s.scrolls, previousID)
		for id, region := range s.regions {
			if region.ScrollID == previousID {
				region.ScrollID = scroll.ScrollID
				s.regions[id] = region
			}
		}
	}
	s.scrolls[scroll.ScrollID] = scroll
	return nil
}

func (s *Store) DeleteScroll(_ context.Context, scrollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scrollID = strings.TrimSpace(scrollID)
	if _, ok := s.scrolls[scrollID]; !ok {
		return domainerrors.ErrScrollNotFound
	}
	for id, region := range s.regions {
		if region.ScrollID == scrollID {
			s.deleteRegionLocked(id)
		}
	}
	delete(s.scrolls, scrollID)
	return nil
}

func (s *Store) GetScroll(_ context.Context, scrollID string) (entities.Scroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scroll, ok := s.scrolls[strings.TrimSpace(scrollID)]
	if !ok {
		return entities.Scroll{}, domainerrors.ErrScrollNotFound
	}
	return scroll, nil
}

func (s *Store) ListScrolls(_ context.Context) ([]entities.Scroll, error) {
	s.mu.RLock()
	items := make([]entities.Scroll, 0, len(s.scrolls))
	for _, scroll := range s.scrolls {
		items = append(items, scroll)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].ScrollID < items[j].ScrollID
	})
	return items, nil
}

func (s *Store) CreateRegion(_ context.Context, region entities.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scrolls[region.ScrollID]; !ok {
		return domainerrors.ErrScrollNotFound
	}
	s.regions[region.RegionID] = region
	return nil
}

func (s *Store) UpdateRegion(
	_ context.Context,
	scrollID string,
	regionID string,
	draft entities.RegionDraft,
	clock ports.Clock,
) (entities.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.regions[strings.TrimSpace(regionID)]
	if !ok || region.ScrollID != strings.TrimSpace(scrollID) {
		return entities.Region{}, domainerrors.ErrRegionNotFound
	}
	region.Coordinates = draft.Coordinates
	region.Transcription = draft.Transcription
	region.UpdatedAt = services.NextUpdatedAt(region.UpdatedAt, s.clockNowLocked(clock))
	s.regions[region.RegionID] = region
	return region, nil
}

func (s *Store) DeleteRegion(_ context.Context, scrollID string, regionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.regions[strings.TrimSpace(regionID)]
	if !ok || region.ScrollID != strings.TrimSpace(scrollID) {
		return domainerrors.ErrRegionNotFound
	}
	s.deleteRegionLocked(region.RegionID)
	return nil
}

func (s *Store) deleteRegionLocked(regionID string) {
	for key := range s.votes {
		if key.regionID == regionID {
			delete(s.votes, key)
		}
	}
	delete(s.regions, regionID)
}

func (s *Store) GetRegion(_ context.Context, regionID string) (entities.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	region, ok := s.regions[strings.TrimSpace(regionID)]
	if !ok {
		return entities.Region{}, domainerrors.ErrRegionNotFound
	}
	return region, nil
}

// ListRegions orders by UpdatedAt, then region id.
func (s *Store) ListRegions(_ context.Context, scrollID string, since *time.Time) ([]entities.Region, error) {
	s.mu.RLock()
	items := make([]entities.Region, 0)
	for _, region := range s.regions {
		if region.ScrollID != scrollID {
			continue
		}
		if since != nil && !region.UpdatedAt.After(*since) {
			continue
		}
		items = append(items, region)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].RegionID < items[j].RegionID
		}
		return items[i].UpdatedAt.Before(items[j].UpdatedAt)
	})
	return items, nil
}

func (s *Store) CastVote(ctx context.Context, scrollID string, vote entities.Vote, clock ports.Clock) (entities.Region, error) {
	if err := ctx.Err(); err != nil {
		return entities.Region{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// The deadline may have passed while waiting for the lock.
	if err := ctx.Err(); err != nil {
		return entities.Region{}, err
	}

	region, ok := s.regions[vote.RegionID]
	if !ok || region.ScrollID != scrollID {
		return entities.Region{}, domainerrors.ErrRegionNotFound
	}

	now := s.clockNowLocked(clock)
	vote.CreatedAt = now
	vote.UpdatedAt = now
	key := voteKey{userID: vote.UserID, regionID: vote.RegionID}
	if existing, exists := s.votes[key]; exists {
		vote.CreatedAt = existing.CreatedAt
	}
	s.votes[key] = vote

	values := make([]int, 0)
	for k, v := range s.votes {
		if k.regionID == vote.RegionID {
			values = append(values, v.Value)
		}
	}
	region.CertaintyScore = services.Certainty(values)
	region.UpdatedAt = services.NextUpdatedAt(region.UpdatedAt, now)
	s.regions[region.RegionID] = region
	return region, nil
}

// ListVotes orders by user id.
func (s *Store) ListVotes(_ context.Context, regionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	items := make([]entities.Vote, 0)
	for key, vote := range s.votes {
		if key.regionID == regionID {
			items = append(items, vote)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) Put(_ context.Context, key string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = data
	return nil
}

func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.images[key]
	if !ok {
		return nil, domainerrors.ErrImageNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Rename(_ context.Context, from string, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.images[from]
	if !ok {
		return domainerrors.ErrImageNotFound
	}
	delete(s.images, from)
	s.images[to] = data
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowLocked()
}

func (s *Store) nowLocked() time.Time {
	if !s.fixedNow.IsZero() {
		return s.fixedNow
	}
	return time.Now().UTC()
}

// clockNowLocked reads clock while s.mu is held. The store's own clock is
// read without re-locking.
func (s *Store) clockNowLocked(clock ports.Clock) time.Time {
	if store, ok := clock.(*Store); clock == nil || (ok && store == s) {
		return s.nowLocked()
	}
	return clock.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.idSequence) > 0 {
		id := s.idSequence[0]
		s.idSequence = s.idSequence[1:]
		return id, nil
	}
	return uuid.NewString(), nil
}

var _ ports.ScrollRepository = (*Store)(nil)
var _ ports.RegionRepository = (*Store)(nil)
var _ ports.VoteLedger = (*Store)(nil)
var _ ports.ImageStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
