package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"local.dev/travelshare-backend/internal/remote"
)

func TestPostFromDocCoercions(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := PostFromDoc(remote.Document{
		ID: "p1",
		Data: map[string]any{
			"userId":   "alice",
			"place":    "Chocolate Hills",
			"location": "Bohol, Philippines",
			// numbers arrive as whatever the writing client used
			"rating":      int64(5),
			"likes":       float64(3),
			"favorites":   1,
			"comment":     "Absolutely stunning!",
			"image":       "https://example.com/p.jpg",
			"likedBy":     []any{"bob", "carol"},
			"favoritedBy": []string{"bob"},
			"createdAt":   created,
		},
	})

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "alice", p.OwnerID)
	assert.Equal(t, 5, p.Rating)
	assert.Equal(t, 3, p.LikeCount)
	assert.Equal(t, 1, p.FavoriteCount)
	assert.Equal(t, []string{"bob", "carol"}, p.LikedBy)
	assert.Equal(t, []string{"bob"}, p.FavoritedBy)
	assert.Equal(t, created, p.CreatedAt)
	assert.NotNil(t, p.Image)
	assert.True(t, p.LikedByUser("bob"))
	assert.False(t, p.LikedByUser("alice"))
	assert.True(t, p.FavoritedByUser("bob"))
}

func TestPostFromDocMissingFields(t *testing.T) {
	p := PostFromDoc(remote.Document{ID: "p2", Data: map[string]any{}})
	assert.Zero(t, p.Rating)
	assert.Zero(t, p.LikeCount)
	assert.Nil(t, p.Image)
	assert.Nil(t, p.LikedBy)
	assert.True(t, p.CreatedAt.IsZero())
}

func TestCommentFromDoc(t *testing.T) {
	pic := "https://example.com/bob.png"
	c := CommentFromDoc(remote.Document{
		ID: "c1",
		Data: map[string]any{
			"userId":      "bob",
			"username":    "Bob R.",
			"profilePic":  &pic,
			"commentText": "wish I was there",
		},
	})
	assert.Equal(t, "bob", c.AuthorID)
	assert.Equal(t, "Bob R.", c.Username)
	assert.Equal(t, "wish I was there", c.Text)
	assert.Equal(t, &pic, c.ProfilePic)
}

func TestProfileFromDocNullPicture(t *testing.T) {
	p := ProfileFromDoc(remote.Document{
		ID: "alice",
		Data: map[string]any{
			"username":   "Alice W.",
			"email":      "alice@example.com",
			"profilePic": nil,
		},
	})
	assert.Equal(t, "Alice W.", p.Username)
	assert.Nil(t, p.ProfilePic)
}
