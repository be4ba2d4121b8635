package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"local.dev/travelshare-backend/internal/feed"
	"local.dev/travelshare-backend/internal/models"
	"local.dev/travelshare-backend/internal/remote"
)

// ---- /me: GET own profile, PATCH allow-listed fields ----
func HandleMe(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := currentUID(r)
		switch r.Method {
		case http.MethodGet:
			p, err := app.Profiles.Get(r.Context(), uid)
			if errors.Is(err, remote.ErrNotFound) {
				// no profile document yet; hand back the minimal identity
				writeJSON(w, http.StatusOK, models.Profile{ID: uid, Username: uid})
				return
			}
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)

		case http.MethodPatch:
			var req struct {
				feed.ProfileFields
				Email string `json:"email"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			updated, err := app.Profiles.Upsert(r.Context(), uid, req.Email, req.ProfileFields)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, updated)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ---- /users/{id}, /users/{id}/posts ----
func HandleUsers(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/users/")
		if rest == "" {
			http.NotFound(w, r)
			return
		}
		parts := strings.Split(rest, "/")
		userID := parts[0]

		if len(parts) == 1 {
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			p, err := app.Profiles.Get(r.Context(), userID)
			if errors.Is(err, remote.ErrNotFound) {
				writeJSON(w, http.StatusOK, models.Profile{ID: userID, Username: userID})
				return
			}
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}

		switch parts[1] {
		case "posts":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			viewer := tryViewerUID(app, r)
			writeJSON(w, http.StatusOK, decorateAll(app.Feed.PostsByOwner(userID), viewer))

		default:
			http.NotFound(w, r)
		}
	}
}
