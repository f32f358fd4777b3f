package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"filmclub/internal/domain"
	"filmclub/internal/store"
)

// earliestReleaseDate is the day cinema was born; films cannot predate it.
var earliestReleaseDate = domain.NewDate(1895, time.December, 28)

// FilmService owns the validation, defaulting and business rules around
// films. All rules run here, identically for both storage backends. The
// user store is needed to check user existence on like/unlike.
type FilmService struct {
	films    store.FilmStore
	users    store.UserStore
	validate *validator.Validate
	logger   *slog.Logger
}

func NewFilmService(films store.FilmStore, users store.UserStore, validate *validator.Validate, logger *slog.Logger) *FilmService {
	return &FilmService{films: films, users: users, validate: validate, logger: logger}
}

// Create validates the film, checks its MPA and genre references against
// the lookup tables and persists it with a freshly assigned id.
func (s *FilmService) Create(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if err := s.validateFilm(ctx, film); err != nil {
		s.logger.WarnContext(ctx, "film rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if film.MPA != nil {
		if _, err := s.films.FindMPAByID(ctx, film.MPA.ID); err != nil {
			return nil, err
		}
	}
	unknown, err := s.films.UnknownGenreIDs(ctx, film.Genres)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, domain.NotFoundf("genres with ids = %s not found", joinIDs(unknown))
	}
	if err := s.films.Create(ctx, film); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "film created", slog.Int64("filmID", film.ID), slog.String("name", film.Name))
	return s.films.FindByID(ctx, film.ID)
}

// Update applies merge semantics on top of the stored record: name is
// always overwritten (it was just validated non-blank), the other mutable
// fields only when the incoming value is present and valid.
func (s *FilmService) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if film.ID == 0 {
		return nil, domain.Validationf("film id must be set")
	}
	stored, err := s.films.FindByID(ctx, film.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(film.Name) == "" {
		return nil, domain.Validationf("film name must not be blank")
	}

	stored.Name = film.Name
	if strings.TrimSpace(film.Description) != "" {
		stored.Description = film.Description
	}
	if film.Duration >= 0 {
		stored.Duration = film.Duration
	}
	if !film.ReleaseDate.IsZero() && !film.ReleaseDate.Before(earliestReleaseDate.Time) {
		stored.ReleaseDate = film.ReleaseDate
	}

	// The merged record must still satisfy the full rule set.
	if err := s.validateFilm(ctx, stored); err != nil {
		return nil, err
	}
	if err := s.films.Update(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "film updated", slog.Int64("filmID", film.ID))
	return s.films.FindByID(ctx, film.ID)
}

func (s *FilmService) FindAll(ctx context.Context) ([]*domain.Film, error) {
	return s.films.FindAll(ctx)
}

func (s *FilmService) FindByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	return s.films.FindByID(ctx, filmID)
}

func (s *FilmService) Delete(ctx context.Context, filmID int64) (*domain.Film, error) {
	film, err := s.films.Delete(ctx, filmID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "film deleted", slog.Int64("filmID", filmID))
	return film, nil
}

// Like adds userID to the film's like set. Both the film and the user must
// exist; liking a film twice is a no-op.
func (s *FilmService) Like(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.films.Like(ctx, filmID, userID)
}

// Unlike removes userID from the film's like set; unliking a film the user
// never liked is a no-op.
func (s *FilmService) Unlike(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.films.Unlike(ctx, filmID, userID)
}

// TopFilms returns up to count films ordered by like count descending.
func (s *FilmService) TopFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	if count <= 0 {
		return nil, domain.Validationf("count query parameter must be positive, got %d", count)
	}
	return s.films.TopFilms(ctx, count)
}

// validateFilm enforces the full static rule set: name non-blank,
// description at most 200 characters, duration non-negative, release date
// not before 1895-12-28.
func (s *FilmService) validateFilm(ctx context.Context, film *domain.Film) error {
	if strings.TrimSpace(film.Name) == "" {
		return domain.Validationf("film name must not be blank")
	}
	if err := s.validate.StructCtx(ctx, film); err != nil {
		return domain.Validationf("invalid film: %s", firstViolation(err))
	}
	if !film.ReleaseDate.IsZero() && film.ReleaseDate.Before(earliestReleaseDate.Time) {
		return domain.Validationf("release date must not be before %s", earliestReleaseDate)
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
