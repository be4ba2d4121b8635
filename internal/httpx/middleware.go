// internal/httpx/middleware.go
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"local.dev/travelshare-backend/internal/config"
	"local.dev/travelshare-backend/internal/feed"
	"local.dev/travelshare-backend/internal/identity"
	"local.dev/travelshare-backend/internal/remote"
	"local.dev/travelshare-backend/internal/storage"
)

type ctxKey string

const uidKey ctxKey = "uid"

// AppCtx is the dependency bag the handlers close over.
type AppCtx struct {
	Feed     *feed.Store
	Profiles *feed.Profiles
	Verifier identity.Verifier
	Uploads  storage.Uploader
	Cfg      config.Config
}

func currentUID(r *http.Request) string {
	if v := r.Context().Value(uidKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// resolveUID maps the Authorization header to a uid, or "". In NO_AUTH
// mode a "Debug <uid>" header short-circuits verification entirely.
func resolveUID(app *AppCtx, r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if app.Cfg.NoAuth {
		if uid, ok := strings.CutPrefix(authz, "Debug "); ok {
			return strings.TrimSpace(uid)
		}
	}
	token, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok {
		return ""
	}
	uid, err := app.Verifier.Verify(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return ""
	}
	return uid
}

// WithAuth rejects requests that don't resolve to a uid.
func WithAuth(app *AppCtx, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := resolveUID(app, r)
		if uid == "" {
			http.Error(w, "missing or invalid bearer token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), uidKey, uid)
		next(w, r.WithContext(ctx))
	}
}

// tryViewerUID is the non-mandatory form, for likedByMe on public reads.
func tryViewerUID(app *AppCtx, r *http.Request) string {
	return resolveUID(app, r)
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the feed sentinels to status codes. Every failure is
// surfaced to the caller once; nothing here retries.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feed.ErrNotFound), errors.Is(err, remote.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, feed.ErrPermissionDenied):
		http.Error(w, "forbidden: not the post owner", http.StatusForbidden)
	case errors.Is(err, feed.ErrMissingFields):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("httpx: remote operation failed: %v", err)
		http.Error(w, "remote operation failed", http.StatusBadGateway)
	}
}
