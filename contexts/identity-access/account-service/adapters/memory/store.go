package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users      map[string]entities.User
	usernames  map[string]string
	fixedNow   time.Time
	idSequence []string
}

func NewStore(seed []entities.User) *Store {
	store := &Store{
		users:     make(map[string]entities.User, len(seed)),
		usernames: make(map[string]string, len(seed)),
	}
	for _, user := range seed {
		store.users[user.UserID] = user
		store.usernames[user.Username] = user.UserID
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

func (s *Store) CreateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[user.Username]; exists {
		return domainerrors.ErrUsernameTaken
	}
	if user.Tier == identityv1.TierRoot {
		for _, existing := range s.users {
			if existing.IsRoot() {
				return domainerrors.ErrRootExists
			}
		}
	}
	s.users[user.UserID] = user
	s.usernames[user.Username] = user.UserID
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.UserID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	if owner, exists := s.usernames[user.Username]; exists && owner != user.UserID {
		return domainerrors.ErrUsernameTaken
	}
	delete(s.usernames, current.Username)
	s.users[user.UserID] = user
	s.usernames[user.Username] = user.UserID
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	delete(s.users, current.UserID)
	delete(s.usernames, current.Username)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.usernames[strings.TrimSpace(username)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *Store) GetRootUser(_ context.Context) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.IsRoot() {
			return user, true, nil
		}
	}
	return entities.User{}, false, nil
}

// ListUsers orders by creation time, then username, to keep pages stable.
func (s *Store) ListUsers(_ context.Context, offset int, limit int) ([]entities.User, error) {
	s.mu.RLock()
	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		items = append(items, user)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].Username < items[j].Username
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []entities.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fixedNow.IsZero() {
		return s.fixedNow
	}
	return time.Now().UTC()
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

var _ ports.UserRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
