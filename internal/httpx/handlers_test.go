package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local.dev/travelshare-backend/internal/config"
	"local.dev/travelshare-backend/internal/feed"
	"local.dev/travelshare-backend/internal/identity"
	"local.dev/travelshare-backend/internal/remote"
	"local.dev/travelshare-backend/internal/storage"
)

func newTestApp(t *testing.T) (*AppCtx, *http.ServeMux) {
	t.Helper()
	mem := remote.NewMemStore()
	profiles := feed.NewProfiles(mem)
	store := feed.NewStore(mem, profiles)
	_, stop, err := store.Listen()
	require.NoError(t, err)
	t.Cleanup(func() {
		stop()
		store.Close()
	})

	uploads := t.TempDir()
	app := &AppCtx{
		Feed:     store,
		Profiles: profiles,
		Verifier: identity.Insecure{},
		Uploads:  storage.NewDir(uploads, ""),
		Cfg:      config.Config{Port: "8088", NoAuth: true, UploadsDir: uploads},
	}
	return app, NewMux(app)
}

// do issues a request as uid using the NO_AUTH debug header.
func do(mux http.Handler, method, path, uid string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if uid != "" {
		req.Header.Set("Authorization", "Debug "+uid)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func validPost() map[string]any {
	return map[string]any{
		"place":    "Chocolate Hills",
		"location": "Bohol, Philippines",
		"rating":   5,
		"comment":  "Absolutely stunning!",
		"image":    "https://example.com/p.jpg",
	}
}

type postResp struct {
	ID            string `json:"id"`
	OwnerID       string `json:"userId"`
	Place         string `json:"place"`
	LikeCount     int    `json:"likes"`
	FavoriteCount int    `json:"favorites"`
	LikedByMe     bool   `json:"likedByMe"`
	FavoritedByMe bool   `json:"favoritedByMe"`
}

func listPosts(t *testing.T, mux http.Handler, uid string) []postResp {
	t.Helper()
	w := do(mux, http.MethodGet, "/posts", uid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []postResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createPost(t *testing.T, mux http.Handler, uid string) string {
	t.Helper()
	w := do(mux, http.MethodPost, "/posts", uid, validPost())
	require.Equal(t, http.StatusAccepted, w.Code)
	var id string
	require.Eventually(t, func() bool {
		posts := listPosts(t, mux, "")
		if len(posts) == 0 {
			return false
		}
		id = posts[0].ID
		return true
	}, time.Second, 5*time.Millisecond)
	return id
}

func TestHealthz(t *testing.T) {
	_, mux := newTestApp(t)
	w := do(mux, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateThenListPosts(t *testing.T) {
	_, mux := newTestApp(t)
	createPost(t, mux, "alice")

	posts := listPosts(t, mux, "alice")
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].OwnerID)
	assert.Equal(t, "Chocolate Hills", posts[0].Place)
	assert.Zero(t, posts[0].LikeCount)
	assert.False(t, posts[0].LikedByMe)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, mux := newTestApp(t)
	w := do(mux, http.MethodPost, "/posts", "", validPost())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRejectsIncompleteBody(t *testing.T) {
	_, mux := newTestApp(t)
	body := validPost()
	delete(body, "place")
	w := do(mux, http.MethodPost, "/posts", "alice", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditRequiresOwner(t *testing.T) {
	_, mux := newTestApp(t)
	id := createPost(t, mux, "alice")

	w := do(mux, http.MethodPut, "/posts/"+id, "mallory", validPost())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(mux, http.MethodPut, "/posts/"+id, "alice", validPost())
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestDeleteRequiresOwner(t *testing.T) {
	_, mux := newTestApp(t)
	id := createPost(t, mux, "alice")

	w := do(mux, http.MethodDelete, "/posts/"+id, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, listPosts(t, mux, ""), 1)

	w = do(mux, http.MethodDelete, "/posts/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Eventually(t, func() bool {
		return len(listPosts(t, mux, "")) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLikeToggleEndpoint(t *testing.T) {
	_, mux := newTestApp(t)
	id := createPost(t, mux, "alice")

	w := do(mux, http.MethodPost, "/posts/"+id+"/like", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p postResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 1, p.LikeCount)
	assert.True(t, p.LikedByMe)
	assert.False(t, p.FavoritedByMe)

	w = do(mux, http.MethodPost, "/posts/"+id+"/like", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Zero(t, p.LikeCount)
	assert.False(t, p.LikedByMe)
}

func TestFavoriteToggleEndpoint(t *testing.T) {
	_, mux := newTestApp(t)
	id := createPost(t, mux, "alice")

	w := do(mux, http.MethodPost, "/posts/"+id+"/favorite", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p postResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 1, p.FavoriteCount)
	assert.True(t, p.FavoritedByMe)
	assert.Zero(t, p.LikeCount)
}

func TestToggleUnknownPostEndpoint(t *testing.T) {
	_, mux := newTestApp(t)
	w := do(mux, http.MethodPost, "/posts/nope/like", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentEndpoints(t *testing.T) {
	_, mux := newTestApp(t)
	id := createPost(t, mux, "alice")

	// blank text is accepted and dropped
	w := do(mux, http.MethodPost, "/posts/"+id+"/comments", "bob", map[string]string{"commentText": "   "})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = do(mux, http.MethodPost, "/posts/"+id+"/comments", "bob", map[string]string{"commentText": "wish I was there"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = do(mux, http.MethodGet, "/posts/"+id+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []struct {
		AuthorID string `json:"userId"`
		Username string `json:"username"`
		Text     string `json:"commentText"`
		TimeAgo  string `json:"timeAgo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].AuthorID)
	assert.Equal(t, "Unknown", comments[0].Username)
	assert.Equal(t, "wish I was there", comments[0].Text)
	assert.Equal(t, "Just now", comments[0].TimeAgo)
}

func TestMeProfileRoundTrip(t *testing.T) {
	_, mux := newTestApp(t)

	// no document yet: minimal identity, not a 404
	w := do(mux, http.MethodGet, "/me", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prof struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prof))
	assert.Equal(t, "alice", prof.ID)
	assert.Equal(t, "alice", prof.Username)

	w = do(mux, http.MethodPatch, "/me", "alice", map[string]string{
		"username": "Alice W.",
		"fullName": "Alice Wong",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prof))
	assert.Equal(t, "Alice W.", prof.Username)
	assert.Equal(t, "Alice Wong", prof.FullName)
	assert.Equal(t, "alice@example.com", prof.Email)

	w = do(mux, http.MethodGet, "/me", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prof))
	assert.Equal(t, "Alice W.", prof.Username)
}

func TestMeRequiresAuth(t *testing.T) {
	_, mux := newTestApp(t)
	w := do(mux, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserPosts(t *testing.T) {
	_, mux := newTestApp(t)
	createPost(t, mux, "alice")

	posts := func(uid string) []postResp {
		w := do(mux, http.MethodGet, "/users/"+uid+"/posts", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []postResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}
	assert.Len(t, posts("alice"), 1)
	assert.Empty(t, posts("bob"))
}

func TestUploadStoresImage(t *testing.T) {
	app, mux := newTestApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "beach.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\npretend-pixels"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Authorization", "Debug alice")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["url"], "/uploads/")
	assert.True(t, strings.HasSuffix(resp["url"], ".png"))

	name := resp["url"][strings.LastIndex(resp["url"], "/")+1:]
	data, err := os.ReadFile(filepath.Join(app.Cfg.UploadsDir, name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestCORSPreflight(t *testing.T) {
	_, mux := newTestApp(t)
	h := CORS(mux)

	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
