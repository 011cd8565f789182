package main

import (
	"context"
	"log"
	"net/http"

	"rps-backend/internal/config"
	"rps-backend/internal/engine"
	"rps-backend/internal/handlers"
	"rps-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var s store.Store
	switch cfg.StoreBackend {
	case "file":
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		s = fs
		log.Printf("Using file store (dir: %s)", cfg.DataDir)
	case "firestore":
		fs, err := store.NewFirestoreStore(ctx, cfg.GCPProjectID, cfg.FirestoreDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize firestore store: %v", err)
		}
		defer fs.Close()
		s = fs
		log.Printf("Using firestore store (project: %s)", cfg.GCPProjectID)
	case "postgres":
		ps, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize postgres store: %v", err)
		}
		s = ps
		log.Println("Using postgres store")
	default:
		s = store.NewMemoryStore()
		log.Println("Using in-memory store")
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatalf("Invalid engine options: %v", err)
	}

	registry, err := engine.NewRegistry(opts, s)
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}
	if err := registry.Hydrate(ctx); err != nil {
		log.Fatalf("Failed to hydrate registry: %v", err)
	}

	h := handlers.New(registry)

	log.Printf("Tournament rules: capacity=%d best-of=%d tiebreak=%s autoRelease=%t",
		opts.Capacity, opts.BestOf, opts.Tiebreak, opts.AutoRelease)
	log.Printf("Server starting on :%s", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, h.Router(cfg.CORSOrigin)); err != nil {
		log.Fatal(err)
	}
}
