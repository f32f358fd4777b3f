package store

import (
	"context"
	"sort"
	"sync"

	"filmclub/internal/domain"
)

// MemoryFilmStore is the volatile backend: films live in a map guarded by a
// mutex and all state is lost on process restart. Reads hand out copies so
// callers can never mutate stored state through a shared pointer.
type MemoryFilmStore struct {
	mu     sync.RWMutex
	films  map[int64]*domain.Film
	order  []int64 // film ids in insertion order, drives FindAll and ranking ties
	mpa    map[int64]domain.MPA
	genres map[int64]domain.Genre
}

func NewMemoryFilmStore() *MemoryFilmStore {
	s := &MemoryFilmStore{
		films:  make(map[int64]*domain.Film),
		mpa:    make(map[int64]domain.MPA),
		genres: make(map[int64]domain.Genre),
	}
	for _, m := range DefaultMPA {
		s.mpa[m.ID] = m
	}
	for _, g := range DefaultGenres {
		s.genres[g.ID] = g
	}
	return s
}

func (s *MemoryFilmStore) Create(ctx context.Context, film *domain.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	film.ID = s.nextID()
	stored := s.copyIn(film)
	s.films[film.ID] = stored
	s.order = append(s.order, film.ID)
	return nil
}

func (s *MemoryFilmStore) Update(ctx context.Context, film *domain.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.films[film.ID]
	if !ok {
		return domain.NotFoundf("film with id = %d not found", film.ID)
	}
	stored := s.copyIn(film)
	stored.Likes = old.Likes // the like relation is owned by Like/Unlike
	s.films[film.ID] = stored
	return nil
}

func (s *MemoryFilmStore) Delete(ctx context.Context, filmID int64) (*domain.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	film, ok := s.films[filmID]
	if !ok {
		return nil, domain.NotFoundf("film with id = %d not found", filmID)
	}
	delete(s.films, filmID)
	for i, id := range s.order {
		if id == filmID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.copyOut(film), nil
}

func (s *MemoryFilmStore) FindByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	film, ok := s.films[filmID]
	if !ok {
		return nil, domain.NotFoundf("film with id = %d not found", filmID)
	}
	return s.copyOut(film), nil
}

func (s *MemoryFilmStore) FindAll(ctx context.Context) ([]*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *MemoryFilmStore) FindMPAByID(ctx context.Context, mpaID int64) (*domain.MPA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mpa[mpaID]
	if !ok {
		return nil, domain.NotFoundf("MPA rating with id = %d not found", mpaID)
	}
	return &m, nil
}

func (s *MemoryFilmStore) FindAllMPA(ctx context.Context) ([]*domain.MPA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.MPA, 0, len(DefaultMPA))
	for _, seed := range DefaultMPA {
		m := s.mpa[seed.ID]
		out = append(out, &m)
	}
	return out, nil
}

func (s *MemoryFilmStore) FindGenreByID(ctx context.Context, genreID int64) (*domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.genres[genreID]
	if !ok {
		return nil, domain.NotFoundf("genre with id = %d not found", genreID)
	}
	return &g, nil
}

func (s *MemoryFilmStore) FindAllGenres(ctx context.Context) ([]*domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Genre, 0, len(DefaultGenres))
	for _, seed := range DefaultGenres {
		g := s.genres[seed.ID]
		out = append(out, &g)
	}
	return out, nil
}

func (s *MemoryFilmStore) UnknownGenreIDs(ctx context.Context, genres []domain.Genre) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unknown []int64
	for _, g := range genres {
		if _, ok := s.genres[g.ID]; !ok {
			unknown = append(unknown, g.ID)
		}
	}
	return unknown, nil
}

func (s *MemoryFilmStore) Like(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	film, ok := s.films[filmID]
	if !ok {
		return nil, domain.NotFoundf("film with id = %d not found", filmID)
	}
	film.AddLike(userID)
	return s.copyOut(film), nil
}

func (s *MemoryFilmStore) Unlike(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	film, ok := s.films[filmID]
	if !ok {
		return nil, domain.NotFoundf("film with id = %d not found", filmID)
	}
	film.RemoveLike(userID)
	return s.copyOut(film), nil
}

func (s *MemoryFilmStore) TopFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	films := s.snapshot()
	sort.SliceStable(films, func(i, j int) bool {
		return len(films[i].Likes) > len(films[j].Likes)
	})
	if count < len(films) {
		films = films[:count]
	}
	return films, nil
}

// nextID computes max(existing ids)+1, starting at 1 for an empty store.
// Deleting the highest id frees it for the next insert; the relational
// backend's sequence never reuses ids. Callers must hold the write lock.
func (s *MemoryFilmStore) nextID() int64 {
	var max int64
	for id := range s.films {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// snapshot returns copies of all films in insertion order. Callers must
// hold at least the read lock.
func (s *MemoryFilmStore) snapshot() []*domain.Film {
	out := make([]*domain.Film, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.copyOut(s.films[id]))
	}
	return out
}

// copyIn clones an incoming film for storage, detaching every slice and
// pointer from the caller.
func (s *MemoryFilmStore) copyIn(film *domain.Film) *domain.Film {
	c := *film
	if film.MPA != nil {
		m := *film.MPA
		c.MPA = &m
	}
	c.Genres = append([]domain.Genre(nil), film.Genres...)
	c.Likes = append([]int64(nil), film.Likes...)
	return &c
}

// copyOut clones a stored film and resolves MPA and genre names from the
// lookup tables, mirroring what the relational backend does on reads.
// Empty relation sets come back non-nil so both backends serialize [].
func (s *MemoryFilmStore) copyOut(film *domain.Film) *domain.Film {
	c := s.copyIn(film)
	if c.MPA != nil {
		if m, ok := s.mpa[c.MPA.ID]; ok {
			c.MPA = &m
		}
	}
	for i, g := range c.Genres {
		if full, ok := s.genres[g.ID]; ok {
			c.Genres[i] = full
		}
	}
	if c.Genres == nil {
		c.Genres = []domain.Genre{}
	}
	if c.Likes == nil {
		c.Likes = []int64{}
	}
	return c
}
