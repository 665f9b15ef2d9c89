package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// SettingsStore persists the ranking settings collection. The collection is
// expected to hold exactly one record after first access; readers take the
// first row.
type SettingsStore struct {
	db   *gorm.DB
	feed ChangeFeed
}

// NewSettingsStore instantiates a GORM-backed settings store.
func NewSettingsStore(db *gorm.DB, feed ChangeFeed) *SettingsStore {
	return &SettingsStore{db: db, feed: feed}
}

// All returns the settings records, oldest first.
func (s *SettingsStore) All(ctx context.Context) ([]models.RankingSettings, error) {
	var settings []models.RankingSettings
	if err := s.db.WithContext(ctx).Order("last_updated ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Insert stores a settings record, assigning an id when unset.
func (s *SettingsStore) Insert(ctx context.Context, settings *models.RankingSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	if settings.LastUpdated.IsZero() {
		settings.LastUpdated = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(settings).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionRankingSettings)
	return nil
}

// Update rewrites the visibility flag and the update stamps in place.
func (s *SettingsStore) Update(ctx context.Context, id string, isVisible bool, updatedBy string, at time.Time) error {
	fields := map[string]interface{}{
		"is_visible":   isVisible,
		"last_updated": at,
		"updated_by":   updatedBy,
	}
	if err := s.db.WithContext(ctx).Model(&models.RankingSettings{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionRankingSettings)
	return nil
}

// Subscribe returns a change signal for the ranking settings collection.
func (s *SettingsStore) Subscribe() (<-chan struct{}, func()) {
	return s.feed.Subscribe(CollectionRankingSettings)
}
