package httpx

import "net/http"

// NewMux wires the handler set. /posts/stream wins over the /posts/
// prefix by ServeMux's longest-pattern rule.
func NewMux(app *AppCtx) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/posts", HandlePosts(app))
	mux.HandleFunc("/posts/stream", HandleFeedStream(app))
	mux.HandleFunc("/posts/", HandlePostDetail(app))

	mux.HandleFunc("/me", WithAuth(app, HandleMe(app)))
	mux.HandleFunc("/users/", HandleUsers(app))

	mux.HandleFunc("/upload", WithAuth(app, HandleUpload(app)))
	if app.Cfg.NoAuth {
		// dev mode serves its own uploads dir
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Cfg.UploadsDir))))
	}

	return mux
}
