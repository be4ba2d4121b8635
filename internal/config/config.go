package config

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

type Config struct {
	Port       string
	DataDir    string
	UploadsDir string

	// NoAuth runs the whole stack credential-free: in-memory document
	// store, unverified tokens, local uploads dir.
	NoAuth bool

	ProjectID     string
	StorageBucket string
}

func Load() Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		dataDir = "/data"
		if _, err := os.Stat(dataDir); err != nil {
			dataDir = filepath.Join(".", "data")
		}
	}
	return Config{
		Port:          getEnv("PORT", "8088"),
		DataDir:       dataDir,
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		NoAuth:        os.Getenv("NO_AUTH") == "1",
		ProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ===== Firebase clients =====

func NewFirebaseApp(cfg Config) *firebase.App {
	if cfg.ProjectID == "" {
		log.Fatal("FIREBASE_PROJECT_ID not set")
	}

	var opts []option.ClientOption
	if saJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); saJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(saJSON)))
	} else if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		if _, err := os.Stat(cred); err != nil {
			log.Fatalf("GOOGLE_APPLICATION_CREDENTIALS %q not readable: %v", cred, err)
		}
		opts = append(opts, option.WithCredentialsFile(cred))
	} else if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" && os.Getenv("FIREBASE_AUTH_EMULATOR_HOST") == "" {
		log.Fatal("Missing Firebase credentials. Set FIREBASE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS, point at an emulator, or use NO_AUTH=1")
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	return app
}

func NewAuthClient(app *firebase.App) *auth.Client {
	client, err := app.Auth(context.Background())
	if err != nil {
		log.Fatalf("firebase auth: %v", err)
	}
	return client
}

func NewFirestoreClient(app *firebase.App) *firestore.Client {
	client, err := app.Firestore(context.Background())
	if err != nil {
		log.Fatalf("firestore init: %v", err)
	}
	return client
}

func NewStorageBucket(app *firebase.App) (*gcs.BucketHandle, string) {
	storage, err := app.Storage(context.Background())
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}
	bucket, err := storage.DefaultBucket()
	if err != nil {
		log.Fatalf("storage bucket: %v", err)
	}
	return bucket, os.Getenv("FIREBASE_STORAGE_BUCKET")
}
