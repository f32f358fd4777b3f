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

// PostgresUserStore implements UserStore on PostgreSQL via sqlx. Friendship
// is stored as directed edges in the friends table; AddFriend and
// DeleteFriend write both directions inside a single transaction so the
// symmetric contract holds even if the process dies mid-call.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

type userRow struct {
	ID       int64          `db:"id"`
	Email    string         `db:"email"`
	Login    string         `db:"login"`
	Name     sql.NullString `db:"name"`
	Birthday domain.Date    `db:"birthday"`
}

func (r userRow) toUser() *domain.User {
	return &domain.User{
		ID:       r.ID,
		Email:    r.Email,
		Login:    r.Login,
		Name:     r.Name.String,
		Birthday: r.Birthday,
	}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, login, name, birthday) VALUES ($1, $2, $3, $4) RETURNING id`

	s.logger.DebugContext(ctx, "executing insert user query", slog.String("login", user.Login))
	err := s.db.QueryRowxContext(ctx, query,
		user.Email, user.Login, nullString(user.Name), user.Birthday,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user created", slog.Int64("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET email = $1, login = $2, name = $3, birthday = $4 WHERE id = $5`

	res, err := s.db.ExecContext(ctx, query,
		user.Email, user.Login, nullString(user.Name), user.Birthday, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("user with id = %d not found", user.ID)
	}
	return nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", slog.Int64("userID", userID))
	return user, nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT id, email, login, name, birthday FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("user with id = %d not found", userID)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	user := row.toUser()
	if err := s.loadReferences(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresUserStore) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.selectUsers(ctx, `SELECT id, email, login, name, birthday FROM users ORDER BY id`)
}

func (s *PostgresUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin add friend transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO friends (user_id, friend_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.ExecContext(ctx, query, pair[0], pair[1]); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
				return domain.NotFoundf("user with id = %d or id = %d not found", userID, friendID)
			}
			return fmt.Errorf("failed to add friend: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit add friend transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "friendship added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *PostgresUserStore) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete friend transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`
	for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.ExecContext(ctx, query, pair[0], pair[1]); err != nil {
			return fmt.Errorf("failed to delete friend: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete friend transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "friendship removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *PostgresUserStore) Friends(ctx context.Context, userID int64) ([]*domain.User, error) {
	query := `SELECT id, email, login, name, birthday FROM users
              WHERE id IN (SELECT friend_id FROM friends WHERE user_id = $1)
              ORDER BY id`
	return s.selectUsers(ctx, query, userID)
}

func (s *PostgresUserStore) CommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	query := `SELECT u.id, u.email, u.login, u.name, u.birthday FROM users u
              JOIN friends f1 ON u.id = f1.friend_id
              JOIN friends f2 ON u.id = f2.friend_id
              WHERE f1.user_id = $1 AND f2.user_id = $2
              ORDER BY u.id`
	return s.selectUsers(ctx, query, userID, otherID)
}

func (s *PostgresUserStore) selectUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		user := row.toUser()
		if err := s.loadReferences(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// loadReferences fills the user's friend id set and liked film id set.
func (s *PostgresUserStore) loadReferences(ctx context.Context, user *domain.User) error {
	user.Friends = []int64{}
	err := s.db.SelectContext(ctx, &user.Friends, `SELECT friend_id FROM friends WHERE user_id = $1`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve user friends: %w", err)
	}
	user.Likes = []int64{}
	err = s.db.SelectContext(ctx, &user.Likes, `SELECT film_id FROM film_likes WHERE user_id = $1`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve user likes: %w", err)
	}
	return nil
}
