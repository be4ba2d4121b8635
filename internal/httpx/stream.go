package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE renditions of the live snapshot subscriptions: one event per
// snapshot, carrying the full list. The subscription is released when
// the client goes away.

func sseSetup(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

func sseSend(w http.ResponseWriter, flusher http.Flusher, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// ---- GET /posts/stream ----
func HandleFeedStream(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := sseSetup(w)
		if !ok {
			return
		}
		viewer := tryViewerUID(app, r)

		ch, stop, err := app.Feed.Listen()
		if err != nil {
			writeError(w, err)
			return
		}
		defer stop()

		for {
			select {
			case posts, ok := <-ch:
				if !ok {
					return
				}
				sseSend(w, flusher, decorateAll(posts, viewer))
			case <-r.Context().Done():
				return
			}
		}
	}
}

// ---- GET /posts/{id}/comments/stream ----
func HandleCommentStream(app *AppCtx, postID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := sseSetup(w)
		if !ok {
			return
		}

		cs, err := app.Feed.WatchComments(postID)
		if err != nil {
			writeError(w, err)
			return
		}
		defer cs.Close()

		for {
			select {
			case comments, ok := <-cs.Updates():
				if !ok {
					return
				}
				sseSend(w, flusher, decorateComments(comments))
			case <-r.Context().Done():
				return
			}
		}
	}
}
