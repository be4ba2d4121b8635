// main.go
package main

import (
	"context"
	"log"
	"net/http"

	"local.dev/travelshare-backend/internal/config"
	"local.dev/travelshare-backend/internal/feed"
	"local.dev/travelshare-backend/internal/httpx"
	"local.dev/travelshare-backend/internal/identity"
	"local.dev/travelshare-backend/internal/remote"
	"local.dev/travelshare-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	var (
		db       remote.DocStore
		verifier identity.Verifier
		uploads  storage.Uploader
	)
	if cfg.NoAuth {
		log.Println("NO_AUTH=1: in-memory store, unverified tokens, local uploads")
		mem := remote.NewMemStore()
		seedDemo(mem)
		db = mem
		verifier = identity.Insecure{}
		uploads = storage.NewDir(cfg.UploadsDir, "")
	} else {
		app := config.NewFirebaseApp(cfg)
		db = remote.NewFirestore(config.NewFirestoreClient(app))
		verifier = identity.NewFirebase(config.NewAuthClient(app))
		bucket, name := config.NewStorageBucket(app)
		uploads = storage.NewBucket(bucket, name)
	}

	profiles := feed.NewProfiles(db)
	store := feed.NewStore(db, profiles)
	defer store.Close()

	// the server is itself a feed consumer; holding a listener keeps the
	// snapshot subscription open for the process lifetime
	_, stop, err := store.Listen()
	if err != nil {
		log.Fatalf("feed subscribe: %v", err)
	}
	defer stop()

	appCtx := &httpx.AppCtx{
		Feed:     store,
		Profiles: profiles,
		Verifier: verifier,
		Uploads:  uploads,
		Cfg:      cfg,
	}

	addr := ":" + cfg.Port
	log.Println("Server listening on", addr)
	if err := http.ListenAndServe(addr, httpx.CORS(httpx.NewMux(appCtx))); err != nil {
		log.Fatal(err)
	}
}

// seedDemo fills the empty dev store with the fixture posts the mobile
// app ships with.
func seedDemo(db remote.DocStore) {
	ctx := context.Background()
	demo := []map[string]any{
		{
			"place":    "Chocolate Hills",
			"location": "Bohol, Philippines",
			"rating":   5,
			"comment":  "Absolutely stunning!",
		},
		{
			"place":    "Baguio City",
			"location": "Benguet, Philippines",
			"rating":   4,
			"comment":  "Cool weather and great food!",
		},
	}
	for _, d := range demo {
		d["image"] = nil
		d["likes"] = 0
		d["favorites"] = 0
		d["likedBy"] = []string{}
		d["favoritedBy"] = []string{}
		d["userId"] = "demo_user"
		d["createdAt"] = remote.ServerTime
		if _, err := db.Create(ctx, feed.PostsCollection, d); err != nil {
			log.Printf("seed: %v", err)
		}
	}
}
