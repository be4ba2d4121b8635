package models

import "time"

// Field names in the json tags match the document layout in the backing
// store: a flat "posts" collection, a "comments" sub-collection under
// each post, and a "users" collection keyed by auth uid.

type Post struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"userId"`
	Place         string    `json:"place"`
	Location      string    `json:"location"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Image         *string   `json:"image"`
	LikeCount     int       `json:"likes"`
	LikedBy       []string  `json:"likedBy"`
	FavoriteCount int       `json:"favorites"`
	FavoritedBy   []string  `json:"favoritedBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p Post) LikedByUser(uid string) bool     { return containsString(p.LikedBy, uid) }
func (p Post) FavoritedByUser(uid string) bool { return containsString(p.FavoritedBy, uid) }

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"userId"`
	Username   string    `json:"username"`
	ProfilePic *string   `json:"profilePic"`
	Text       string    `json:"commentText"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic *string   `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
