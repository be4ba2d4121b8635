package models

import (
	"time"

	"local.dev/travelshare-backend/internal/remote"
)

// Decoding from raw snapshot documents. The store hands back untyped
// maps; numbers arrive as int, int64 or float64 and arrays as []any
// depending on which client wrote them, so everything goes through the
// coercion helpers below.

func PostFromDoc(d remote.Document) Post {
	return Post{
		ID:            d.ID,
		OwnerID:       docString(d.Data, "userId"),
		Place:         docString(d.Data, "place"),
		Location:      docString(d.Data, "location"),
		Rating:        docInt(d.Data, "rating"),
		Comment:       docString(d.Data, "comment"),
		Image:         docOptString(d.Data, "image"),
		LikeCount:     docInt(d.Data, "likes"),
		LikedBy:       docStrings(d.Data, "likedBy"),
		FavoriteCount: docInt(d.Data, "favorites"),
		FavoritedBy:   docStrings(d.Data, "favoritedBy"),
		CreatedAt:     docTime(d.Data, "createdAt"),
	}
}

func CommentFromDoc(d remote.Document) Comment {
	return Comment{
		ID:         d.ID,
		AuthorID:   docString(d.Data, "userId"),
		Username:   docString(d.Data, "username"),
		ProfilePic: docOptString(d.Data, "profilePic"),
		Text:       docString(d.Data, "commentText"),
		CreatedAt:  docTime(d.Data, "createdAt"),
	}
}

func ProfileFromDoc(d remote.Document) Profile {
	return Profile{
		ID:         d.ID,
		Username:   docString(d.Data, "username"),
		FullName:   docString(d.Data, "fullName"),
		Email:      docString(d.Data, "email"),
		ProfilePic: docOptString(d.Data, "profilePic"),
		CreatedAt:  docTime(d.Data, "createdAt"),
	}
}

func docString(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func docOptString(m map[string]any, k string) *string {
	switch v := m[k].(type) {
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func docInt(m map[string]any, k string) int {
	switch n := m[k].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func docStrings(m map[string]any, k string) []string {
	switch xs := m[k].(type) {
	case []string:
		return append([]string(nil), xs...)
	case []any:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func docTime(m map[string]any, k string) time.Time {
	if t, ok := m[k].(time.Time); ok {
		return t
	}
	return time.Time{}
}
