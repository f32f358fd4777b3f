package store

import (
	"context"

	"filmclub/internal/domain"
)

// FilmStore is the persistence contract for films and the MPA/genre lookup
// tables. Two interchangeable implementations exist: MemoryFilmStore and
// PostgresFilmStore; the backend is selected at startup via configuration.
//
// Create assigns the new id on the passed film. Update persists the full
// (already merged) mutable field set of an existing film; merge semantics
// live in the service layer so both backends behave identically. Methods
// that need a film or lookup row to exist return *domain.NotFoundError
// when it does not.
type FilmStore interface {
	Create(ctx context.Context, film *domain.Film) error
	Update(ctx context.Context, film *domain.Film) error
	Delete(ctx context.Context, filmID int64) (*domain.Film, error)
	FindByID(ctx context.Context, filmID int64) (*domain.Film, error)
	FindAll(ctx context.Context) ([]*domain.Film, error)

	FindMPAByID(ctx context.Context, mpaID int64) (*domain.MPA, error)
	FindAllMPA(ctx context.Context) ([]*domain.MPA, error)
	FindGenreByID(ctx context.Context, genreID int64) (*domain.Genre, error)
	FindAllGenres(ctx context.Context) ([]*domain.Genre, error)
	// UnknownGenreIDs returns the ids among genres that have no row in the
	// genres lookup table, in input order.
	UnknownGenreIDs(ctx context.Context, genres []domain.Genre) ([]int64, error)

	// Like and Unlike are idempotent set operations on the film's like set
	// and return the film in its post-operation state.
	Like(ctx context.Context, filmID, userID int64) (*domain.Film, error)
	Unlike(ctx context.Context, filmID, userID int64) (*domain.Film, error)
	// TopFilms returns up to count films ordered by like count descending.
	// The tie-break between films with equal like counts is unspecified;
	// the in-memory backend happens to keep insertion order.
	TopFilms(ctx context.Context, count int) ([]*domain.Film, error)
}

// Seed data for the MPA and genre lookup tables. The relational backend
// carries the same rows in db/schema.sql; the in-memory backend loads them
// in its constructor so both backends resolve identical references.
var (
	DefaultMPA = []domain.MPA{
		{ID: 1, Name: "G"},
		{ID: 2, Name: "PG"},
		{ID: 3, Name: "PG-13"},
		{ID: 4, Name: "R"},
		{ID: 5, Name: "NC-17"},
	}
	DefaultGenres = []domain.Genre{
		{ID: 1, Name: "Comedy"},
		{ID: 2, Name: "Drama"},
		{ID: 3, Name: "Cartoon"},
		{ID: 4, Name: "Thriller"},
		{ID: 5, Name: "Documentary"},
		{ID: 6, Name: "Action"},
	}
)
