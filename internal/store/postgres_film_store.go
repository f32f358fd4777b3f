package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"filmclub/internal/domain"
)

// Postgres error codes we branch on.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// PostgresFilmStore implements FilmStore on PostgreSQL via sqlx. Id
// assignment is delegated to the films table's native auto-increment;
// MPA, genre and like references are resolved by follow-up queries on
// every read, the insert-then-fetch pair runs without an explicit
// transaction.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	return &PostgresFilmStore{db: db, logger: logger}, nil
}

// filmRow mirrors a films table row; nullable columns scan into sql.Null*.
type filmRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	ReleaseDate domain.Date    `db:"release_date"`
	Duration    int            `db:"duration"`
	MPAID       sql.NullInt64  `db:"mpa_id"`
}

func (r filmRow) toFilm() *domain.Film {
	f := &domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
	}
	if r.MPAID.Valid {
		f.MPA = &domain.MPA{ID: r.MPAID.Int64}
	}
	return f
}

func (s *PostgresFilmStore) Create(ctx context.Context, film *domain.Film) error {
	query := `INSERT INTO films (name, description, release_date, duration, mpa_id)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	s.logger.DebugContext(ctx, "executing insert film query", slog.String("name", film.Name))
	err := s.db.QueryRowxContext(ctx, query,
		film.Name, nullString(film.Description), film.ReleaseDate, film.Duration, mpaID(film),
	).Scan(&film.ID)
	if err != nil {
		return fmt.Errorf("failed to create film: %w", err)
	}

	if err := s.replaceGenres(ctx, film.ID, film.Genres); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "film created", slog.Int64("filmID", film.ID))
	return nil
}

func (s *PostgresFilmStore) Update(ctx context.Context, film *domain.Film) error {
	query := `UPDATE films SET name = $1, description = $2, release_date = $3, duration = $4, mpa_id = $5
              WHERE id = $6`

	s.logger.DebugContext(ctx, "executing update film query", slog.Int64("filmID", film.ID))
	res, err := s.db.ExecContext(ctx, query,
		film.Name, nullString(film.Description), film.ReleaseDate, film.Duration, mpaID(film), film.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update film: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("film with id = %d not found", film.ID)
	}
	return s.replaceGenres(ctx, film.ID, film.Genres)
}

func (s *PostgresFilmStore) Delete(ctx context.Context, filmID int64) (*domain.Film, error) {
	film, err := s.FindByID(ctx, filmID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE id = $1`, filmID); err != nil {
		return nil, fmt.Errorf("failed to delete film: %w", err)
	}
	s.logger.InfoContext(ctx, "film deleted", slog.Int64("filmID", filmID))
	return film, nil
}

func (s *PostgresFilmStore) FindByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	var row filmRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, description, release_date, duration, mpa_id
                                       FROM films WHERE id = $1`, filmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("film with id = %d not found", filmID)
		}
		return nil, fmt.Errorf("failed to get film by id: %w", err)
	}
	film := row.toFilm()
	if err := s.loadReferences(ctx, film); err != nil {
		return nil, err
	}
	return film, nil
}

func (s *PostgresFilmStore) FindAll(ctx context.Context) ([]*domain.Film, error) {
	return s.selectFilms(ctx, `SELECT id, name, description, release_date, duration, mpa_id
                               FROM films ORDER BY id`)
}

func (s *PostgresFilmStore) FindMPAByID(ctx context.Context, mpaID int64) (*domain.MPA, error) {
	var m domain.MPA
	err := s.db.GetContext(ctx, &m, `SELECT id, name FROM mpa WHERE id = $1`, mpaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("MPA rating with id = %d not found", mpaID)
		}
		return nil, fmt.Errorf("failed to get MPA rating by id: %w", err)
	}
	return &m, nil
}

func (s *PostgresFilmStore) FindAllMPA(ctx context.Context) ([]*domain.MPA, error) {
	var out []*domain.MPA
	if err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM mpa ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list MPA ratings: %w", err)
	}
	return out, nil
}

func (s *PostgresFilmStore) FindGenreByID(ctx context.Context, genreID int64) (*domain.Genre, error) {
	var g domain.Genre
	err := s.db.GetContext(ctx, &g, `SELECT id, name FROM genres WHERE id = $1`, genreID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("genre with id = %d not found", genreID)
		}
		return nil, fmt.Errorf("failed to get genre by id: %w", err)
	}
	return &g, nil
}

func (s *PostgresFilmStore) FindAllGenres(ctx context.Context) ([]*domain.Genre, error) {
	var out []*domain.Genre
	if err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return out, nil
}

func (s *PostgresFilmStore) UnknownGenreIDs(ctx context.Context, genres []domain.Genre) ([]int64, error) {
	if len(genres) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	var known []int64
	err := s.db.SelectContext(ctx, &known, `SELECT id FROM genres WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve genre ids: %w", err)
	}
	knownSet := make(map[int64]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}
	var unknown []int64
	for _, id := range ids {
		if _, ok := knownSet[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

func (s *PostgresFilmStore) Like(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	// ON CONFLICT makes a repeated like a no-op on the set.
	query := `INSERT INTO film_likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return nil, domain.NotFoundf("film with id = %d or user with id = %d not found", filmID, userID)
		}
		return nil, fmt.Errorf("failed to like film: %w", err)
	}
	s.logger.InfoContext(ctx, "film liked", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return s.FindByID(ctx, filmID)
}

func (s *PostgresFilmStore) Unlike(ctx context.Context, filmID, userID int64) (*domain.Film, error) {
	query := `DELETE FROM film_likes WHERE film_id = $1 AND user_id = $2`
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		return nil, fmt.Errorf("failed to unlike film: %w", err)
	}
	return s.FindByID(ctx, filmID)
}

func (s *PostgresFilmStore) TopFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	query := `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id
              FROM films f
              LEFT JOIN film_likes fl ON f.id = fl.film_id
              GROUP BY f.id
              ORDER BY COUNT(fl.user_id) DESC
              LIMIT $1`
	return s.selectFilms(ctx, query, count)
}

func (s *PostgresFilmStore) selectFilms(ctx context.Context, query string, args ...any) ([]*domain.Film, error) {
	var rows []filmRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	films := make([]*domain.Film, 0, len(rows))
	for _, row := range rows {
		film := row.toFilm()
		if err := s.loadReferences(ctx, film); err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	return films, nil
}

// loadReferences resolves the film's MPA name, genre list and like set.
func (s *PostgresFilmStore) loadReferences(ctx context.Context, film *domain.Film) error {
	if film.MPA != nil {
		var m domain.MPA
		err := s.db.GetContext(ctx, &m, `SELECT id, name FROM mpa WHERE id = $1`, film.MPA.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to resolve film MPA rating: %w", err)
		}
		if err == nil {
			film.MPA = &m
		}
	}
	film.Genres = []domain.Genre{}
	err := s.db.SelectContext(ctx, &film.Genres, `SELECT g.id, g.name FROM genres g
             JOIN film_genres fg ON g.id = fg.genre_id
             WHERE fg.film_id = $1 ORDER BY g.id`, film.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve film genres: %w", err)
	}
	film.Likes = []int64{}
	err = s.db.SelectContext(ctx, &film.Likes, `SELECT user_id FROM film_likes WHERE film_id = $1`, film.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve film likes: %w", err)
	}
	return nil
}

// replaceGenres rewrites the film_genres rows for a film.
func (s *PostgresFilmStore) replaceGenres(ctx context.Context, filmID int64, genres []domain.Genre) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("failed to clear film genres: %w", err)
	}
	for _, g := range genres {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO film_genres (film_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			filmID, g.ID)
		if err != nil {
			return fmt.Errorf("failed to attach genre %d: %w", g.ID, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mpaID(film *domain.Film) sql.NullInt64 {
	if film.MPA == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: film.MPA.ID, Valid: true}
}
