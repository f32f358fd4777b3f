package domain

// MPA is a film's rating classification. MPA rows live in a fixed lookup
// table and are only ever read through the service layer. When an MPA value
// arrives inside a film payload only the id is meaningful; the name is
// resolved from the lookup table on reads.
type MPA struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Genre is a reference entity from the genres lookup table.
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Film is the catalog entity. ID is assigned by the storage backend on
// creation; Likes holds the ids of users who liked the film, with set
// semantics (no duplicates, no ordering guarantee).
type Film struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required"`
	Description string  `json:"description,omitempty" db:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate,omitempty" db:"release_date"`
	Duration    int     `json:"duration" db:"duration" validate:"gte=0"`
	MPA         *MPA    `json:"mpa,omitempty" db:"-"`
	Genres      []Genre `json:"genres" db:"-"`
	Likes       []int64 `json:"likes" db:"-"`
}

// HasLike reports whether userID is already in the film's like set.
func (f *Film) HasLike(userID int64) bool {
	for _, id := range f.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// AddLike adds userID to the like set. Liking twice is a no-op.
func (f *Film) AddLike(userID int64) {
	if !f.HasLike(userID) {
		f.Likes = append(f.Likes, userID)
	}
}

// RemoveLike removes userID from the like set. Removing an absent like is
// a no-op.
func (f *Film) RemoveLike(userID int64) {
	for i, id := range f.Likes {
		if id == userID {
			f.Likes = append(f.Likes[:i], f.Likes[i+1:]...)
			return
		}
	}
}
