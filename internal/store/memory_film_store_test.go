package store

import (
	"context"
	"testing"
	"time"

	"filmclub/internal/domain"
)

func newFilm(name string) *domain.Film {
	return &domain.Film{
		Name:        name,
		Description: "a film about " + name,
		ReleaseDate: domain.NewDate(2000, time.January, 1),
		Duration:    120,
	}
}

func TestMemoryFilmStoreIDAssignment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()

	a := newFilm("a")
	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID != 1 {
		t.Errorf("first id = %d, want 1", a.ID)
	}

	b := newFilm("b")
	if err := s.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != 2 {
		t.Errorf("second id = %d, want 2", b.ID)
	}

	// Deleting the highest id frees it for reuse by max+1; deleting a lower
	// one must not disturb the sequence.
	if _, err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c := newFilm("c")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != 3 {
		t.Errorf("id after delete = %d, want 3", c.ID)
	}
}

func TestMemoryFilmStoreFindByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()
	f := newFilm("original")
	if err := s.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Name = "mutated"

	again, err := s.FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.Name != "original" {
		t.Errorf("stored film mutated through a returned pointer: %q", again.Name)
	}
}

func TestMemoryFilmStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()

	if _, err := s.FindByID(ctx, 42); !domain.IsNotFound(err) {
		t.Errorf("FindByID on empty store: got %v, want NotFoundError", err)
	}
	if _, err := s.Delete(ctx, 42); !domain.IsNotFound(err) {
		t.Errorf("Delete on empty store: got %v, want NotFoundError", err)
	}
	if err := s.Update(ctx, &domain.Film{ID: 42, Name: "x"}); !domain.IsNotFound(err) {
		t.Errorf("Update on empty store: got %v, want NotFoundError", err)
	}
	if _, err := s.Like(ctx, 42, 1); !domain.IsNotFound(err) {
		t.Errorf("Like on empty store: got %v, want NotFoundError", err)
	}
}

func TestMemoryFilmStoreLikesAreASet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()
	f := newFilm("liked")
	if err := s.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Like(ctx, f.ID, 7); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	got, err := s.FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Likes) != 1 || got.Likes[0] != 7 {
		t.Errorf("likes after double like = %v, want [7]", got.Likes)
	}

	// Unliking an absent like is a no-op, not an error.
	if _, err := s.Unlike(ctx, f.ID, 99); err != nil {
		t.Fatalf("unlike of non-liker: %v", err)
	}
	if _, err := s.Unlike(ctx, f.ID, 7); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	got, _ = s.FindByID(ctx, f.ID)
	if len(got.Likes) != 0 {
		t.Errorf("likes after unlike = %v, want empty", got.Likes)
	}
}

func TestMemoryFilmStoreTopFilms(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()

	// Like counts: a=3, b=1, c=2.
	likeCounts := map[string]int{"a": 3, "b": 1, "c": 2}
	ids := map[string]int64{}
	for _, name := range []string{"a", "b", "c"} {
		f := newFilm(name)
		if err := s.Create(ctx, f); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids[name] = f.ID
		for u := 1; u <= likeCounts[name]; u++ {
			if _, err := s.Like(ctx, f.ID, int64(u)); err != nil {
				t.Fatalf("like: %v", err)
			}
		}
	}

	top, err := s.TopFilms(ctx, 2)
	if err != nil {
		t.Fatalf("top films: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].ID != ids["a"] || top[1].ID != ids["c"] {
		t.Errorf("top order = [%d %d], want [%d %d]", top[0].ID, top[1].ID, ids["a"], ids["c"])
	}

	// A count larger than the catalog returns everything.
	all, err := s.TopFilms(ctx, 10)
	if err != nil {
		t.Fatalf("top films: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len = %d, want 3", len(all))
	}
}

func TestMemoryFilmStoreLookupTables(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()

	mpa, err := s.FindMPAByID(ctx, 1)
	if err != nil {
		t.Fatalf("find MPA: %v", err)
	}
	if mpa.Name != "G" {
		t.Errorf("MPA 1 = %q, want G", mpa.Name)
	}
	if _, err := s.FindMPAByID(ctx, 99); !domain.IsNotFound(err) {
		t.Errorf("unknown MPA: got %v, want NotFoundError", err)
	}

	genres, err := s.FindAllGenres(ctx)
	if err != nil {
		t.Fatalf("list genres: %v", err)
	}
	if len(genres) != len(DefaultGenres) {
		t.Errorf("genre count = %d, want %d", len(genres), len(DefaultGenres))
	}

	unknown, err := s.UnknownGenreIDs(ctx, []domain.Genre{{ID: 1}, {ID: 99}, {ID: 100}})
	if err != nil {
		t.Fatalf("unknown genre ids: %v", err)
	}
	if len(unknown) != 2 || unknown[0] != 99 || unknown[1] != 100 {
		t.Errorf("unknown = %v, want [99 100]", unknown)
	}
}

func TestMemoryFilmStoreReadsResolveReferences(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()

	f := newFilm("referenced")
	f.MPA = &domain.MPA{ID: 3}
	f.Genres = []domain.Genre{{ID: 1}, {ID: 6}}
	if err := s.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.MPA == nil || got.MPA.Name != "PG-13" {
		t.Errorf("MPA = %+v, want PG-13", got.MPA)
	}
	if len(got.Genres) != 2 || got.Genres[0].Name != "Comedy" || got.Genres[1].Name != "Action" {
		t.Errorf("genres = %+v, want resolved names", got.Genres)
	}
}

func TestMemoryFilmStoreEmptySetsAreNonNil(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()
	f := newFilm("bare")
	if err := s.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Reads must hand out non-nil sets so the JSON layer renders [] the
	// way the relational backend does, never null.
	got, err := s.FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Genres == nil {
		t.Error("Genres is nil, want an empty slice")
	}
	if got.Likes == nil {
		t.Error("Likes is nil, want an empty slice")
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if all[0].Genres == nil || all[0].Likes == nil {
		t.Errorf("FindAll returned nil sets: genres=%v likes=%v", all[0].Genres, all[0].Likes)
	}
}

func TestMemoryFilmStoreUpdatePreservesLikes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFilmStore()
	f := newFilm("stable")
	if err := s.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Like(ctx, f.ID, 5); err != nil {
		t.Fatalf("like: %v", err)
	}

	updated := newFilm("renamed")
	updated.ID = f.ID
	if err := s.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.FindByID(ctx, f.ID)
	if got.Name != "renamed" {
		t.Errorf("name = %q, want renamed", got.Name)
	}
	if len(got.Likes) != 1 || got.Likes[0] != 5 {
		t.Errorf("likes lost on update: %v", got.Likes)
	}
}
