// Package feed owns the local mirror of the shared post collection. The
// mirror is kept live by a snapshot subscription to the remote store and
// is never the authority: every mutation is written through, and its
// visible effect arrives back with the next snapshot. Like/favorite
// toggles additionally flip the local copy right away so the caller sees
// the change before the round trip; the next snapshot overwrites the
// mirror unconditionally either way.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"local.dev/travelshare-backend/internal/models"
	"local.dev/travelshare-backend/internal/remote"
)

const PostsCollection = "posts"

var (
	ErrNotFound         = errors.New("feed: post not found")
	ErrPermissionDenied = errors.New("feed: only the post owner may do that")
	ErrMissingFields    = errors.New("feed: missing required fields")
)

var validate = validator.New()

// PostFields is the owner-editable content of a post. Counters,
// membership sets and the owner id deliberately have no representation
// here, so neither create nor edit can ever write them.
type PostFields struct {
	Place    string  `json:"place" validate:"required"`
	Location string  `json:"location" validate:"required"`
	Rating   int     `json:"rating" validate:"required"`
	Comment  string  `json:"comment" validate:"required"`
	Image    *string `json:"image" validate:"required"`
}

func (f PostFields) updates() []remote.Update {
	return []remote.Update{
		remote.Set("place", f.Place),
		remote.Set("location", f.Location),
		remote.Set("rating", f.Rating),
		remote.Set("comment", f.Comment),
		remote.Set("image", f.Image),
	}
}

type Store struct {
	db       remote.DocStore
	profiles *Profiles

	mu    sync.RWMutex
	posts []models.Post

	lmu       sync.Mutex
	listeners map[int]chan []models.Post
	nextID    int
	sub       remote.Subscription
	cancel    context.CancelFunc
}

func NewStore(db remote.DocStore, profiles *Profiles) *Store {
	return &Store{
		db:        db,
		profiles:  profiles,
		listeners: map[int]chan []models.Post{},
	}
}

// ===== subscription lifecycle =====

// Listen registers a feed consumer. The returned channel carries the
// full post list after every snapshot, newest first; a slow consumer
// sees the latest list, not every intermediate one. The cancel func must
// be called when the consumer goes away — the remote subscription is
// opened by the first listener and closed when the last one leaves.
func (s *Store) Listen() (<-chan []models.Post, func(), error) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	if s.sub == nil {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := s.db.Subscribe(ctx, PostsCollection, "createdAt", true)
		if err != nil {
			cancel()
			return nil, nil, err
		}
		s.sub, s.cancel = sub, cancel
		go s.run(sub)
	}

	id := s.nextID
	s.nextID++
	ch := make(chan []models.Post, 1)
	s.listeners[id] = ch
	ch <- s.Posts()

	cancel := func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		close(ch)
		if len(s.listeners) == 0 {
			s.teardownLocked()
		}
	}
	return ch, cancel, nil
}

// Close drops all listeners and the remote subscription.
func (s *Store) Close() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for id, ch := range s.listeners {
		delete(s.listeners, id)
		close(ch)
	}
	s.teardownLocked()
}

func (s *Store) teardownLocked() {
	if s.sub == nil {
		return
	}
	s.cancel()
	s.sub.Stop()
	s.sub, s.cancel = nil, nil
}

func (s *Store) run(sub remote.Subscription) {
	for docs := range sub.Snapshots() {
		posts := make([]models.Post, 0, len(docs))
		for _, d := range docs {
			posts = append(posts, models.PostFromDoc(d))
		}
		// full replacement in server order; this is the single refresh path
		s.mu.Lock()
		s.posts = posts
		s.mu.Unlock()
		s.broadcast()
	}
}

func (s *Store) broadcast() {
	posts := s.Posts()
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for _, ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- posts:
		default:
		}
	}
}

// ===== reads =====

// Posts returns a copy of the current mirror, createdAt descending.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Post(nil), s.posts...)
}

func (s *Store) PostByID(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (s *Store) PostsByOwner(uid string) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, 0)
	for _, p := range s.posts {
		if p.OwnerID == uid {
			out = append(out, p)
		}
	}
	return out
}

// ===== mutations =====

// CreatePost writes a new post document owned by ownerID. The post shows
// up in the mirror with the next snapshot, not synchronously.
func (s *Store) CreatePost(ctx context.Context, ownerID string, f PostFields) error {
	if ownerID == "" {
		return ErrPermissionDenied
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	fields := map[string]any{
		"place":       f.Place,
		"location":    f.Location,
		"rating":      f.Rating,
		"comment":     f.Comment,
		"image":       f.Image,
		"likes":       0,
		"favorites":   0,
		"likedBy":     []string{},
		"favoritedBy": []string{},
		"userId":      ownerID,
		"createdAt":   remote.ServerTime,
	}
	_, err := s.db.Create(ctx, PostsCollection, fields)
	return err
}

// ToggleLike flips uid's membership in the post's likedBy set. Direction
// comes from the local, possibly stale mirror: concurrent toggles from
// two clients can leave the counter off by one until a later toggle.
// The write itself uses atomic increment + arrayUnion/arrayRemove, so a
// lost update never corrupts the membership set.
func (s *Store) ToggleLike(ctx context.Context, postID, uid string) error {
	return s.toggle(ctx, postID, uid, "likes", "likedBy")
}

// ToggleFavorite is the same mechanism over favorites/favoritedBy.
func (s *Store) ToggleFavorite(ctx context.Context, postID, uid string) error {
	return s.toggle(ctx, postID, uid, "favorites", "favoritedBy")
}

func (s *Store) toggle(ctx context.Context, postID, uid, counter, members string) error {
	post, ok := s.PostByID(postID)
	if !ok {
		return ErrNotFound
	}
	var member bool
	if members == "likedBy" {
		member = post.LikedByUser(uid)
	} else {
		member = post.FavoritedByUser(uid)
	}

	// optimistic: flip the mirror now, the next snapshot overwrites it
	s.applyLocal(postID, func(p *models.Post) {
		if members == "likedBy" {
			p.LikeCount, p.LikedBy = flip(p.LikeCount, p.LikedBy, uid, member)
		} else {
			p.FavoriteCount, p.FavoritedBy = flip(p.FavoriteCount, p.FavoritedBy, uid, member)
		}
	})

	var ups []remote.Update
	if member {
		ups = []remote.Update{remote.Increment(counter, -1), remote.ArrayRemove(members, uid)}
	} else {
		ups = []remote.Update{remote.Increment(counter, 1), remote.ArrayUnion(members, uid)}
	}
	// no rollback on failure; the mirror self-corrects on the next snapshot
	return s.db.Update(ctx, PostsCollection, postID, ups)
}

// EditPost rewrites the content fields of an owned post. Only the
// allow-listed fields in PostFields ever reach the update payload.
func (s *Store) EditPost(ctx context.Context, postID, uid string, f PostFields) error {
	post, ok := s.PostByID(postID)
	if !ok {
		return ErrNotFound
	}
	if err := assertOwner(post, uid); err != nil {
		return err
	}
	return s.db.Update(ctx, PostsCollection, postID, f.updates())
}

// DeletePost removes an owned post. Comment documents under it are left
// behind, matching the backing store's non-cascading deletes.
func (s *Store) DeletePost(ctx context.Context, postID, uid string) error {
	post, ok := s.PostByID(postID)
	if !ok {
		return ErrNotFound
	}
	if err := assertOwner(post, uid); err != nil {
		return err
	}
	return s.db.Delete(ctx, PostsCollection, postID)
}

// AddComment appends to the post's comment sub-collection with the
// author's profile name and picture. Whitespace-only text is a silent
// no-op, not an error.
func (s *Store) AddComment(ctx context.Context, postID, uid, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, ok := s.PostByID(postID); !ok {
		return ErrNotFound
	}
	username := "Unknown"
	var pic *string
	if prof, err := s.profiles.Get(ctx, uid); err == nil {
		if prof.Username != "" {
			username = prof.Username
		}
		pic = prof.ProfilePic
	}
	fields := map[string]any{
		"userId":      uid,
		"username":    username,
		"profilePic":  pic,
		"commentText": text,
		"createdAt":   remote.ServerTime,
	}
	_, err := s.db.Create(ctx, commentsPath(postID), fields)
	return err
}

// ===== helpers =====

// assertOwner is the single ownership gate for every mutating operation
// that is restricted to the creator.
func assertOwner(p models.Post, uid string) error {
	if uid == "" || p.OwnerID != uid {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Store) applyLocal(postID string, fn func(*models.Post)) {
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			fn(&s.posts[i])
			break
		}
	}
	s.mu.Unlock()
	s.broadcast()
}

func flip(count int, set []string, uid string, member bool) (int, []string) {
	if member {
		out := make([]string, 0, len(set))
		for _, x := range set {
			if x != uid {
				out = append(out, x)
			}
		}
		return count - 1, out
	}
	return count + 1, append(append([]string(nil), set...), uid)
}

func commentsPath(postID string) string {
	return PostsCollection + "/" + postID + "/comments"
}
