package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"rps-backend/internal/store"
)

// Migrates tournaments from a file store into Firestore, preserving the
// original IDs and timestamps.
func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		log.Fatal("GCP_PROJECT_ID is required")
	}

	databaseID := os.Getenv("FIRESTORE_DATABASE")

	ctx := context.Background()

	src, err := store.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("Failed to open file store: %v", err)
	}

	dst, err := store.NewFirestoreStore(ctx, projectID, databaseID)
	if err != nil {
		log.Fatalf("Failed to open firestore store: %v", err)
	}
	defer dst.Close()

	dbName := databaseID
	if dbName == "" {
		dbName = "(default)"
	}
	fmt.Printf("Migrating from %s -> Firestore (project: %s, database: %s)\n\n", dataDir, projectID, dbName)

	tournaments, err := src.ListTournaments(ctx)
	if err != nil {
		log.Fatalf("Failed to list tournaments: %v", err)
	}

	migrated := 0
	fmt.Printf("Tournaments: %d\n", len(tournaments))
	for _, t := range tournaments {
		fmt.Printf("  %s (#%d, %s)\n", t.Name, t.ID, t.Status)
		fmt.Printf("    Created: %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    Players: %d, Matches: %d, Round: %d\n", len(t.Players), len(t.Matches), t.CurrentRound)
		if t.WinnerID != 0 {
			if w := t.Player(t.WinnerID); w != nil {
				fmt.Printf("    Winner: %s\n", w.Name)
			}
		}
		if err := dst.SaveTournament(ctx, t); err != nil {
			fmt.Printf("    SKIP: %v\n", err)
			continue
		}
		migrated++
		fmt.Printf("    OK\n")
	}

	fmt.Printf("\nDone. Migrated %d of %d tournament(s).\n", migrated, len(tournaments))
}
