package feed

import (
	"context"
	"sync"

	"local.dev/travelshare-backend/internal/models"
	"local.dev/travelshare-backend/internal/remote"
)

// Comments returns the post's comment sub-collection, oldest first.
func (s *Store) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	docs, err := s.db.List(ctx, commentsPath(postID), "createdAt", false)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.CommentFromDoc(d))
	}
	return out, nil
}

// CommentCount is a derived view over the sub-collection.
func (s *Store) CommentCount(ctx context.Context, postID string) (int, error) {
	docs, err := s.db.List(ctx, commentsPath(postID), "", false)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// CommentStream is the live variant of Comments: the post-feed
// subscription pattern at smaller scale, against one post's comment
// sub-collection.
type CommentStream struct {
	db     remote.DocStore
	postID string

	mu       sync.RWMutex
	comments []models.Comment

	sub    remote.Subscription
	cancel context.CancelFunc
	ch     chan []models.Comment
}

// WatchComments opens a live subscription on the post's comments. The
// caller must Close the stream when the consuming view is torn down.
func (s *Store) WatchComments(postID string) (*CommentStream, error) {
	cs := &CommentStream{
		db:     s.db,
		postID: postID,
		ch:     make(chan []models.Comment, 1),
	}
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := cs.db.Subscribe(ctx, commentsPath(postID), "createdAt", false)
	if err != nil {
		cancel()
		return nil, err
	}
	cs.sub, cs.cancel = sub, cancel
	go cs.run(sub)
	return cs, nil
}

// Updates carries the full comment list after every snapshot, latest
// state only. The channel closes after Close.
func (cs *CommentStream) Updates() <-chan []models.Comment { return cs.ch }

func (cs *CommentStream) Comments() []models.Comment {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return append([]models.Comment(nil), cs.comments...)
}

func (cs *CommentStream) Close() {
	cs.cancel()
	cs.sub.Stop()
}

func (cs *CommentStream) run(sub remote.Subscription) {
	defer close(cs.ch)
	for docs := range sub.Snapshots() {
		comments := make([]models.Comment, 0, len(docs))
		for _, d := range docs {
			comments = append(comments, models.CommentFromDoc(d))
		}
		cs.mu.Lock()
		cs.comments = comments
		cs.mu.Unlock()

		select {
		case <-cs.ch:
		default:
		}
		select {
		case cs.ch <- comments:
		default:
		}
	}
}
