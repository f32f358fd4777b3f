package store

import (
	"context"
	"sync"

	"filmclub/internal/domain"
)

// MemoryUserStore is the volatile backend for users. The optional films
// reference lets user reads derive the "films this user liked" set the same
// way the relational backend derives it from the film_likes table; a nil
// films store leaves the set empty.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[int64]*domain.User
	order []int64
	films *MemoryFilmStore
}

func NewMemoryUserStore(films *MemoryFilmStore) *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[int64]*domain.User),
		films: films,
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID()
	s.users[user.ID] = s.copyIn(user)
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[user.ID]
	if !ok {
		return domain.NotFoundf("user with id = %d not found", user.ID)
	}
	stored := s.copyIn(user)
	stored.Friends = old.Friends // the friend relation is owned by AddFriend/DeleteFriend
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, userID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user with id = %d not found", userID)
	}
	delete(s.users, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	// Drop the deleted user from everyone else's friend set so stale edges
	// never surface through Friends or CommonFriends.
	for _, u := range s.users {
		u.RemoveFriend(userID)
	}
	return s.copyOut(user), nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user with id = %d not found", userID)
	}
	return s.copyOut(user), nil
}

func (s *MemoryUserStore) FindAll(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.copyOut(s.users[id]))
	}
	return out, nil
}

// AddFriend records the friendship in both users' friend sets in one call.
func (s *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.NotFoundf("user with id = %d not found", userID)
	}
	friend, ok := s.users[friendID]
	if !ok {
		return domain.NotFoundf("user with id = %d not found", friendID)
	}
	user.AddFriend(friendID)
	friend.AddFriend(userID)
	return nil
}

func (s *MemoryUserStore) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.NotFoundf("user with id = %d not found", userID)
	}
	friend, ok := s.users[friendID]
	if !ok {
		return domain.NotFoundf("user with id = %d not found", friendID)
	}
	user.RemoveFriend(friendID)
	friend.RemoveFriend(userID)
	return nil
}

func (s *MemoryUserStore) Friends(ctx context.Context, userID int64) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user with id = %d not found", userID)
	}
	out := make([]*domain.User, 0, len(user.Friends))
	for _, id := range user.Friends {
		if friend, ok := s.users[id]; ok {
			out = append(out, s.copyOut(friend))
		}
	}
	return out, nil
}

func (s *MemoryUserStore) CommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user with id = %d not found", userID)
	}
	other, ok := s.users[otherID]
	if !ok {
		return nil, domain.NotFoundf("user with id = %d not found", otherID)
	}
	out := []*domain.User{}
	for _, id := range user.Friends {
		if !other.HasFriend(id) {
			continue
		}
		if friend, ok := s.users[id]; ok {
			out = append(out, s.copyOut(friend))
		}
	}
	return out, nil
}

// nextID computes max(existing ids)+1. Deleting the highest id frees it
// for the next insert; the relational backend's sequence never reuses ids.
func (s *MemoryUserStore) nextID() int64 {
	var maxID int64
	for id := range s.users {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

func (s *MemoryUserStore) copyIn(user *domain.User) *domain.User {
	c := *user
	c.Friends = append([]int64(nil), user.Friends...)
	c.Likes = append([]int64(nil), user.Likes...)
	return &c
}

// copyOut clones a stored user and derives the liked-film set. Empty
// relation sets come back non-nil so both backends serialize [].
func (s *MemoryUserStore) copyOut(user *domain.User) *domain.User {
	c := s.copyIn(user)
	if s.films != nil {
		c.Likes = s.films.likedFilmIDs(user.ID)
	}
	if c.Friends == nil {
		c.Friends = []int64{}
	}
	if c.Likes == nil {
		c.Likes = []int64{}
	}
	return c
}

// likedFilmIDs returns the ids of films whose like set contains userID.
// Lock ordering is always user store before film store; the film store
// never calls back into the user store.
func (s *MemoryFilmStore) likedFilmIDs(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int64
	for _, id := range s.order {
		if s.films[id].HasLike(userID) {
			out = append(out, id)
		}
	}
	return out
}
