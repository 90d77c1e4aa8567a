// Package memory is an in-process users store with the same conditional
// update semantics as the Mongo store, item keys included (see
// domain.SameKey). It backs STORE_BACKEND=memory and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/mylist-service/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	users   map[primitive.ObjectID]*domain.User
	byEmail map[string]primitive.ObjectID
}

func NewStore() *Store {
	return &Store{
		users:   make(map[primitive.ObjectID]*domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return domain.ErrEmailTaken
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Profiles == nil {
		u.Profiles = []domain.Profile{}
	}
	s.users[u.ID] = cloneUser(u)
	s.byEmail[u.Email] = u.ID
	return nil
}

// DeleteUser removes a user; used to exercise flows where the account vanished.
func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.users, id)
	}
}

func (s *Store) PushProfile(ctx context.Context, userID primitive.ObjectID, p domain.Profile, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || len(u.Profiles) >= limit {
		return false, nil
	}
	u.Profiles = append(u.Profiles, cloneProfile(p))
	return true, nil
}

func (s *Store) PullProfile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	idx := -1
	for i := range u.Profiles {
		if u.Profiles[i].ID == profileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	u.Profiles = append(u.Profiles[:idx:idx], u.Profiles[idx+1:]...)

	out := cloneUser(u)
	out.PasswordHash = ""
	return out, nil
}

func (s *Store) PushListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, item domain.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(userID, profileID)
	if p == nil || p.MyList.Contains(c, item.Key()) {
		return false, nil
	}
	list := listOf(&p.MyList, c)
	if list == nil {
		return false, nil
	}
	*list = append(*list, cloneItem(item))
	return true, nil
}

func (s *Store) PullListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, key any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(userID, profileID)
	if p == nil {
		return false, nil
	}
	list := listOf(&p.MyList, c)
	if list == nil {
		return false, nil
	}
	kept := make([]domain.Item, 0, len(*list))
	for _, it := range *list {
		if !domain.SameKey(it.Key(), key) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(*list) {
		return false, nil
	}
	*list = kept
	return true, nil
}

// profile must be called with s.mu held.
func (s *Store) profile(userID, profileID primitive.ObjectID) *domain.Profile {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return u.Profile(profileID)
}

func listOf(m *domain.MyList, c domain.Category) *[]domain.Item {
	switch c {
	case domain.CategoryMovies:
		return &m.Movies
	case domain.CategorySeries:
		return &m.Series
	case domain.CategoryGames:
		return &m.Games
	}
	return nil
}
