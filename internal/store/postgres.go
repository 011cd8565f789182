package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rps-backend/internal/models"
)

// tournamentRow is the relational shape of a persisted tournament. The full
// aggregate lives in the JSON document column; the indexed columns exist for
// lookups and ad-hoc queries only.
type tournamentRow struct {
	ID        int    `gorm:"primaryKey"`
	UID       string `gorm:"uniqueIndex;size:36"`
	Name      string
	Status    string `gorm:"index"`
	Document  []byte `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (tournamentRow) TableName() string { return "tournaments" }

// PostgresStore persists tournaments through gorm.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.AutoMigrate(&tournamentRow{}); err != nil {
		return nil, fmt.Errorf("migrating tournaments table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveTournament(ctx context.Context, t *models.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding tournament %d: %w", t.ID, err)
	}

	row := tournamentRow{
		ID:        t.ID,
		UID:       t.UID,
		Name:      t.Name,
		Status:    string(t.Status),
		Document:  doc,
		UpdatedAt: t.UpdatedAt,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving tournament %d: %w", t.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var row tournamentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("loading tournament %d: %w", id, err)
	}

	var t models.Tournament
	if err := json.Unmarshal(row.Document, &t); err != nil {
		return nil, fmt.Errorf("decoding tournament %d: %w", id, err)
	}
	return &t, nil
}

func (s *PostgresStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	var rows []tournamentRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}

	tournaments := make([]*models.Tournament, 0, len(rows))
	for _, row := range rows {
		var t models.Tournament
		if err := json.Unmarshal(row.Document, &t); err != nil {
			continue // skip rows that predate the current schema
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, nil
}

func (s *PostgresStore) DeleteTournament(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&tournamentRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting tournament %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	return nil
}
