package service

import (
	"context"
	"log/slog"

	"filmclub/internal/domain"
	"filmclub/internal/store"
)

// GenreService exposes read-only access to the genres lookup table.
type GenreService struct {
	films  store.FilmStore
	logger *slog.Logger
}

func NewGenreService(films store.FilmStore, logger *slog.Logger) *GenreService {
	return &GenreService{films: films, logger: logger}
}

func (s *GenreService) FindAll(ctx context.Context) ([]*domain.Genre, error) {
	return s.films.FindAllGenres(ctx)
}

func (s *GenreService) FindByID(ctx context.Context, genreID int64) (*domain.Genre, error) {
	return s.films.FindGenreByID(ctx, genreID)
}

// MPAService exposes read-only access to the MPA rating lookup table.
type MPAService struct {
	films  store.FilmStore
	logger *slog.Logger
}

func NewMPAService(films store.FilmStore, logger *slog.Logger) *MPAService {
	return &MPAService{films: films, logger: logger}
}

func (s *MPAService) FindAll(ctx context.Context) ([]*domain.MPA, error) {
	return s.films.FindAllMPA(ctx)
}

func (s *MPAService) FindByID(ctx context.Context, mpaID int64) (*domain.MPA, error) {
	return s.films.FindMPAByID(ctx, mpaID)
}
