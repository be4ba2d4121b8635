package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"local.dev/travelshare-backend/internal/feed"
	"local.dev/travelshare-backend/internal/models"
)

// postView decorates a post with the viewer-dependent bits the clients
// render directly.
type postView struct {
	models.Post
	LikedByMe     bool `json:"likedByMe"`
	FavoritedByMe bool `json:"favoritedByMe"`
}

func decorate(p models.Post, viewer string) postView {
	return postView{
		Post:          p,
		LikedByMe:     p.LikedByUser(viewer),
		FavoritedByMe: p.FavoritedByUser(viewer),
	}
}

func decorateAll(posts []models.Post, viewer string) []postView {
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, decorate(p, viewer))
	}
	return out
}

type commentView struct {
	models.Comment
	TimeAgo string `json:"timeAgo"`
}

func decorateComments(comments []models.Comment) []commentView {
	now := time.Now().UTC()
	out := make([]commentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentView{Comment: c, TimeAgo: feed.TimeAgo(c.CreatedAt, now)})
	}
	return out
}

// ---- /posts: GET list, POST create ----
func HandlePosts(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			viewer := tryViewerUID(app, r)
			writeJSON(w, http.StatusOK, decorateAll(app.Feed.Posts(), viewer))

		case http.MethodPost:
			WithAuth(app, func(w http.ResponseWriter, r *http.Request) {
				var f feed.PostFields
				if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				if err := app.Feed.CreatePost(r.Context(), currentUID(r), f); err != nil {
					writeError(w, err)
					return
				}
				// the created post reaches the feed with the next snapshot
				w.WriteHeader(http.StatusAccepted)
			})(w, r)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ---- /posts/{id}, /posts/{id}/{like,favorite,comments} ----
func HandlePostDetail(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/posts/")
		if path == "" {
			http.NotFound(w, r)
			return
		}
		parts := strings.Split(path, "/")
		id := parts[0]

		if len(parts) == 1 {
			switch r.Method {
			case http.MethodGet:
				p, ok := app.Feed.PostByID(id)
				if !ok {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, decorate(p, tryViewerUID(app, r)))

			case http.MethodPut:
				WithAuth(app, func(w http.ResponseWriter, r *http.Request) {
					var f feed.PostFields
					if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
						http.Error(w, err.Error(), http.StatusBadRequest)
						return
					}
					if err := app.Feed.EditPost(r.Context(), id, currentUID(r), f); err != nil {
						writeError(w, err)
						return
					}
					w.WriteHeader(http.StatusAccepted)
				})(w, r)

			case http.MethodDelete:
				WithAuth(app, func(w http.ResponseWriter, r *http.Request) {
					if err := app.Feed.DeletePost(r.Context(), id, currentUID(r)); err != nil {
						writeError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
				})(w, r)

			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		switch parts[1] {
		case "like":
			WithAuth(app, toggleHandler(app, id, app.Feed.ToggleLike))(w, r)

		case "favorite":
			WithAuth(app, toggleHandler(app, id, app.Feed.ToggleFavorite))(w, r)

		case "comments":
			if len(parts) > 2 && parts[2] == "stream" {
				HandleCommentStream(app, id)(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				comments, err := app.Feed.Comments(r.Context(), id)
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, decorateComments(comments))

			case http.MethodPost:
				WithAuth(app, func(w http.ResponseWriter, r *http.Request) {
					var req struct {
						Text string `json:"commentText"`
					}
					if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
						http.Error(w, err.Error(), http.StatusBadRequest)
						return
					}
					if err := app.Feed.AddComment(r.Context(), id, currentUID(r), req.Text); err != nil {
						writeError(w, err)
						return
					}
					w.WriteHeader(http.StatusAccepted)
				})(w, r)

			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}

		default:
			http.NotFound(w, r)
		}
	}
}

func toggleHandler(app *AppCtx, postID string, toggle func(ctx context.Context, postID, uid string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		uid := currentUID(r)
		if err := toggle(r.Context(), postID, uid); err != nil {
			writeError(w, err)
			return
		}
		// the optimistic local flip is already visible
		p, ok := app.Feed.PostByID(postID)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, decorate(p, uid))
	}
}
