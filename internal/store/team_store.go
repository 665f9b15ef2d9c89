package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// TeamStore persists the teams collection and announces every committed write
// on the change feed.
type TeamStore struct {
	db   *gorm.DB
	feed ChangeFeed
}

// NewTeamStore instantiates a GORM-backed team store.
func NewTeamStore(db *gorm.DB, feed ChangeFeed) *TeamStore {
	return &TeamStore{db: db, feed: feed}
}

// All returns every team in insertion order.
func (s *TeamStore) All(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Insert stores a new team, assigning an id and creation timestamp when unset.
func (s *TeamStore) Insert(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	if team.Members == nil {
		team.Members = datatypes.NewJSONSlice([]string{})
	}

	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionTeams)
	return nil
}

// Update merges the three mutable display fields into the record. The member
// roster is untouched.
func (s *TeamStore) Update(ctx context.Context, id, name, description, color string) error {
	return s.updateFields(ctx, id, map[string]interface{}{
		"name":        name,
		"description": description,
		"color":       color,
	})
}

// SetMembers rewrites the full member roster.
func (s *TeamStore) SetMembers(ctx context.Context, id string, members []string) error {
	return s.updateFields(ctx, id, map[string]interface{}{
		"members": datatypes.NewJSONSlice(members),
	})
}

// Delete removes the team record.
func (s *TeamStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.feed.Announce(ctx, CollectionTeams)
	return nil
}

// Subscribe returns a change signal for the teams collection.
func (s *TeamStore) Subscribe() (<-chan struct{}, func()) {
	return s.feed.Subscribe(CollectionTeams)
}

func (s *TeamStore) updateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionTeams)
	return nil
}
