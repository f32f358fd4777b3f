package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"filmclub/internal/domain"
	"filmclub/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFilmServiceForTest() (*FilmService, *UserService) {
	films := store.NewMemoryFilmStore()
	users := store.NewMemoryUserStore(films)
	validate := validator.New()
	logger := testLogger()
	return NewFilmService(films, users, validate, logger),
		NewUserService(users, validate, logger)
}

func validFilm() *domain.Film {
	return &domain.Film{
		Name:        "The Matrix",
		Description: "A hacker discovers reality is a simulation.",
		ReleaseDate: domain.NewDate(1999, time.March, 31),
		Duration:    136,
	}
}

func mustCreateFilm(t *testing.T, s *FilmService, film *domain.Film) *domain.Film {
	t.Helper()
	created, err := s.Create(context.Background(), film)
	if err != nil {
		t.Fatalf("create film: %v", err)
	}
	return created
}

func mustCreateUser(t *testing.T, s *UserService, login string) *domain.User {
	t.Helper()
	created, err := s.Create(context.Background(), &domain.User{
		Email: login + "@example.com",
		Login: login,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", login, err)
	}
	return created
}

func TestFilmCreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(f *domain.Film)
		wantInvalid bool
	}{
		{name: "valid film", mutate: func(f *domain.Film) {}},
		{name: "release on cinema birthday is allowed", mutate: func(f *domain.Film) {
			f.ReleaseDate = domain.NewDate(1895, time.December, 28)
		}},
		{name: "release the day before is rejected", mutate: func(f *domain.Film) {
			f.ReleaseDate = domain.NewDate(1895, time.December, 27)
		}, wantInvalid: true},
		{name: "absent release date is allowed", mutate: func(f *domain.Film) {
			f.ReleaseDate = domain.Date{}
		}},
		{name: "blank name is rejected", mutate: func(f *domain.Film) {
			f.Name = "   "
		}, wantInvalid: true},
		{name: "empty name is rejected", mutate: func(f *domain.Film) {
			f.Name = ""
		}, wantInvalid: true},
		{name: "200 char description is allowed", mutate: func(f *domain.Film) {
			f.Description = strings.Repeat("x", 200)
		}},
		{name: "201 char description is rejected", mutate: func(f *domain.Film) {
			f.Description = strings.Repeat("x", 201)
		}, wantInvalid: true},
		{name: "zero duration is allowed", mutate: func(f *domain.Film) {
			f.Duration = 0
		}},
		{name: "negative duration is rejected", mutate: func(f *domain.Film) {
			f.Duration = -1
		}, wantInvalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			films, _ := newFilmServiceForTest()
			f := validFilm()
			tt.mutate(f)
			_, err := films.Create(context.Background(), f)
			if tt.wantInvalid {
				if !domain.IsValidation(err) {
					t.Errorf("got %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFilmCreateAssignsDistinctPositiveIDs(t *testing.T) {
	films, _ := newFilmServiceForTest()
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		created := mustCreateFilm(t, films, validFilm())
		if created.ID <= 0 {
			t.Fatalf("id = %d, want positive", created.ID)
		}
		if seen[created.ID] {
			t.Fatalf("id %d assigned twice", created.ID)
		}
		seen[created.ID] = true
	}
}

func TestFilmCreateUnknownReferences(t *testing.T) {
	films, _ := newFilmServiceForTest()

	withMPA := validFilm()
	withMPA.MPA = &domain.MPA{ID: 99}
	if _, err := films.Create(context.Background(), withMPA); !domain.IsNotFound(err) {
		t.Errorf("unknown MPA: got %v, want NotFoundError", err)
	}

	withGenres := validFilm()
	withGenres.Genres = []domain.Genre{{ID: 1}, {ID: 98}, {ID: 99}}
	_, err := films.Create(context.Background(), withGenres)
	if !domain.IsNotFound(err) {
		t.Fatalf("unknown genres: got %v, want NotFoundError", err)
	}
	// Every unmatched id must be named in the message.
	for _, id := range []string{"98", "99"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not mention genre id %s", err, id)
		}
	}
}

func TestFilmUpdateMergeSemantics(t *testing.T) {
	films, _ := newFilmServiceForTest()
	created := mustCreateFilm(t, films, validFilm())

	updated, err := films.Update(context.Background(), &domain.Film{
		ID:          created.ID,
		Name:        "The Matrix Reloaded",
		Description: "",                                   // blank: keep old
		Duration:    -5,                                   // invalid: keep old
		ReleaseDate: domain.NewDate(1800, time.January, 1), // before cutoff: keep old
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "The Matrix Reloaded" {
		t.Errorf("name = %q, want overwritten", updated.Name)
	}
	if updated.Description != created.Description {
		t.Errorf("blank description overwrote stored value: %q", updated.Description)
	}
	if updated.Duration != created.Duration {
		t.Errorf("negative duration overwrote stored value: %d", updated.Duration)
	}
	if !updated.ReleaseDate.Equal(created.ReleaseDate.Time) {
		t.Errorf("pre-cutoff release date overwrote stored value: %v", updated.ReleaseDate)
	}

	// Valid incoming values do overwrite.
	updated, err = films.Update(context.Background(), &domain.Film{
		ID:          created.ID,
		Name:        "Renamed",
		Description: "new description",
		Duration:    90,
		ReleaseDate: domain.NewDate(2003, time.May, 15),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "new description" || updated.Duration != 90 {
		t.Errorf("valid fields not applied: %+v", updated)
	}
	if updated.ReleaseDate.String() != "2003-05-15" {
		t.Errorf("release date = %s, want 2003-05-15", updated.ReleaseDate)
	}
}

func TestFilmUpdateErrors(t *testing.T) {
	films, _ := newFilmServiceForTest()
	created := mustCreateFilm(t, films, validFilm())

	if _, err := films.Update(context.Background(), &domain.Film{Name: "no id"}); !domain.IsValidation(err) {
		t.Errorf("absent id: got %v, want ValidationError", err)
	}
	if _, err := films.Update(context.Background(), &domain.Film{ID: 999, Name: "ghost"}); !domain.IsNotFound(err) {
		t.Errorf("unknown id: got %v, want NotFoundError", err)
	}
	if _, err := films.Update(context.Background(), &domain.Film{ID: created.ID, Name: "  "}); !domain.IsValidation(err) {
		t.Errorf("blank name: got %v, want ValidationError", err)
	}
}

func TestFilmLikeRequiresExistingUserAndFilm(t *testing.T) {
	films, users := newFilmServiceForTest()
	film := mustCreateFilm(t, films, validFilm())
	user := mustCreateUser(t, users, "viewer")

	if _, err := films.Like(context.Background(), 999, user.ID); !domain.IsNotFound(err) {
		t.Errorf("unknown film: got %v, want NotFoundError", err)
	}
	if _, err := films.Like(context.Background(), film.ID, 999); !domain.IsNotFound(err) {
		t.Errorf("unknown user: got %v, want NotFoundError", err)
	}

	got, err := films.Like(context.Background(), film.ID, user.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	got, err = films.Like(context.Background(), film.ID, user.ID)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if len(got.Likes) != 1 || got.Likes[0] != user.ID {
		t.Errorf("likes = %v, want the user exactly once", got.Likes)
	}

	// Unlike of a film the user never liked is a no-op.
	other := mustCreateUser(t, users, "other")
	if _, err := films.Unlike(context.Background(), film.ID, other.ID); err != nil {
		t.Errorf("unlike by non-liker: %v", err)
	}
}

func TestTopFilmsRanking(t *testing.T) {
	films, users := newFilmServiceForTest()
	ctx := context.Background()

	var viewers []*domain.User
	for _, login := range []string{"u1", "u2", "u3"} {
		viewers = append(viewers, mustCreateUser(t, users, login))
	}

	// Like counts: first=3, second=1, third=2.
	counts := []int{3, 1, 2}
	var ids []int64
	for i, n := range counts {
		f := validFilm()
		f.Name = f.Name + " " + strings.Repeat("I", i+1)
		created := mustCreateFilm(t, films, f)
		ids = append(ids, created.ID)
		for _, v := range viewers[:n] {
			if _, err := films.Like(ctx, created.ID, v.ID); err != nil {
				t.Fatalf("like: %v", err)
			}
		}
	}

	top, err := films.TopFilms(ctx, 2)
	if err != nil {
		t.Fatalf("top films: %v", err)
	}
	if len(top) != 2 || top[0].ID != ids[0] || top[1].ID != ids[2] {
		t.Errorf("top = %v, want films with like counts 3 then 2", top)
	}

	if _, err := films.TopFilms(ctx, 0); !domain.IsValidation(err) {
		t.Errorf("count 0: got %v, want ValidationError", err)
	}
	if _, err := films.TopFilms(ctx, -3); !domain.IsValidation(err) {
		t.Errorf("negative count: got %v, want ValidationError", err)
	}
}

func TestFilmCreateThenFindRoundTrip(t *testing.T) {
	films, _ := newFilmServiceForTest()
	f := validFilm()
	f.MPA = &domain.MPA{ID: 1}
	f.Genres = []domain.Genre{{ID: 2}}
	created := mustCreateFilm(t, films, f)

	got, err := films.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != f.Name || got.Description != f.Description ||
		got.Duration != f.Duration || !got.ReleaseDate.Equal(f.ReleaseDate.Time) {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.MPA == nil || got.MPA.ID != 1 || got.MPA.Name != "G" {
		t.Errorf("MPA not resolved: %+v", got.MPA)
	}
	if len(got.Genres) != 1 || got.Genres[0].Name != "Drama" {
		t.Errorf("genres not resolved: %+v", got.Genres)
	}
}
