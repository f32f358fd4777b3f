package store

import (
	"context"

	"filmclub/internal/domain"
)

// UserStore is the persistence contract for users and their friendship
// relation. Friendship is symmetric: AddFriend and DeleteFriend update both
// members' friend sets inside a single storage call, so the service layer
// issues exactly one call per client request.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID int64) (*domain.User, error)
	FindByID(ctx context.Context, userID int64) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)

	AddFriend(ctx context.Context, userID, friendID int64) error
	DeleteFriend(ctx context.Context, userID, friendID int64) error
	// Friends resolves the user's friend ids to full entities, skipping ids
	// that no longer resolve to an existing user.
	Friends(ctx context.Context, userID int64) ([]*domain.User, error)
	// CommonFriends returns the users present in both friend sets.
	CommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error)
}
