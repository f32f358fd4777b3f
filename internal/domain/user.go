package domain

// User is the social entity. Friends holds the ids of befriended users and
// Likes the ids of films this user has liked; both are sets kept as id
// references, resolved to full entities only by the dedicated read
// endpoints.
type User struct {
	ID       int64   `json:"id" db:"id"`
	Email    string  `json:"email" db:"email" validate:"required,email"`
	Login    string  `json:"login" db:"login" validate:"required"`
	Name     string  `json:"name,omitempty" db:"name"`
	Birthday Date    `json:"birthday,omitempty" db:"birthday"`
	Friends  []int64 `json:"friends" db:"-"`
	Likes    []int64 `json:"likes" db:"-"`
}

// HasFriend reports whether friendID is in the user's friend set.
func (u *User) HasFriend(friendID int64) bool {
	for _, id := range u.Friends {
		if id == friendID {
			return true
		}
	}
	return false
}

// AddFriend adds friendID to the friend set; adding twice is a no-op.
// Symmetry between the two users is the storage layer's responsibility.
func (u *User) AddFriend(friendID int64) {
	if !u.HasFriend(friendID) {
		u.Friends = append(u.Friends, friendID)
	}
}

// RemoveFriend removes friendID from the friend set; removing an absent
// friend is a no-op.
func (u *User) RemoveFriend(friendID int64) {
	for i, id := range u.Friends {
		if id == friendID {
			u.Friends = append(u.Friends[:i], u.Friends[i+1:]...)
			return
		}
	}
}
