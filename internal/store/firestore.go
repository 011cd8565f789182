package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rps-backend/internal/models"
)

const tournamentCollection = "tournaments"

// FirestoreStore persists tournaments in a Google Cloud Firestore collection.
// Documents are keyed by the tournament UID, so multiple server instances
// sharing a project never collide on the process-local integer IDs.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(ctx context.Context, projectID, databaseID string) (*FirestoreStore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: tournamentCollection}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) SaveTournament(ctx context.Context, t *models.Tournament) error {
	if _, err := s.client.Collection(s.collection).Doc(t.UID).Set(ctx, t); err != nil {
		return fmt.Errorf("saving tournament %d: %w", t.ID, err)
	}
	return nil
}

func (s *FirestoreStore) docByID(ctx context.Context, id int) (*firestore.DocumentSnapshot, error) {
	iter := s.client.Collection(s.collection).Where("ID", "==", id).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying tournament %d: %w", id, err)
	}
	return doc, nil
}

func (s *FirestoreStore) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	doc, err := s.docByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var t models.Tournament
	if err := doc.DataTo(&t); err != nil {
		return nil, fmt.Errorf("decoding tournament %d: %w", id, err)
	}
	return &t, nil
}

func (s *FirestoreStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	tournaments := make([]*models.Tournament, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing tournaments: %w", err)
		}

		var t models.Tournament
		if err := doc.DataTo(&t); err != nil {
			continue // skip documents that predate the current schema
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, nil
}

func (s *FirestoreStore) DeleteTournament(ctx context.Context, id int) error {
	doc, err := s.docByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := doc.Ref.Delete(ctx); err != nil {
		return fmt.Errorf("deleting tournament %d: %w", id, err)
	}
	return nil
}
