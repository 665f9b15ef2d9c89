package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ProvaStore persists the provas collection, submissions embedded.
type ProvaStore struct {
	db   *gorm.DB
	feed ChangeFeed
}

// NewProvaStore instantiates a GORM-backed prova store.
func NewProvaStore(db *gorm.DB, feed ChangeFeed) *ProvaStore {
	return &ProvaStore{db: db, feed: feed}
}

// All returns every prova, newest first.
func (s *ProvaStore) All(ctx context.Context) ([]models.Prova, error) {
	var provas []models.Prova
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&provas).Error; err != nil {
		return nil, err
	}
	return provas, nil
}

// Insert stores a new prova, assigning an id and creation timestamp when unset.
func (s *ProvaStore) Insert(ctx context.Context, prova *models.Prova) error {
	if prova.ID == "" {
		prova.ID = uuid.NewString()
	}
	if prova.CreatedAt.IsZero() {
		prova.CreatedAt = time.Now().UTC()
	}
	if prova.Submissions == nil {
		prova.Submissions = datatypes.NewJSONSlice([]models.Submission{})
	}

	if err := s.db.WithContext(ctx).Create(prova).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionProvas)
	return nil
}

// Update merges the four authorable fields. Activation state and submissions
// are untouched.
func (s *ProvaStore) Update(ctx context.Context, id, title, description, instructions string, maxPoints int) error {
	return s.updateFields(ctx, id, map[string]interface{}{
		"title":        title,
		"description":  description,
		"instructions": instructions,
		"max_points":   maxPoints,
	})
}

// SetActive flips the single activation flag.
func (s *ProvaStore) SetActive(ctx context.Context, id string, isActive bool) error {
	return s.updateFields(ctx, id, map[string]interface{}{
		"is_active": isActive,
	})
}

// SetSubmissions rewrites the full embedded submission list.
func (s *ProvaStore) SetSubmissions(ctx context.Context, id string, submissions []models.Submission) error {
	return s.updateFields(ctx, id, map[string]interface{}{
		"submissions": datatypes.NewJSONSlice(submissions),
	})
}

// Delete removes the prova record and, with it, every embedded submission.
func (s *ProvaStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Prova{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.feed.Announce(ctx, CollectionProvas)
	return nil
}

// Subscribe returns a change signal for the provas collection.
func (s *ProvaStore) Subscribe() (<-chan struct{}, func()) {
	return s.feed.Subscribe(CollectionProvas)
}

func (s *ProvaStore) updateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.db.WithContext(ctx).Model(&models.Prova{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionProvas)
	return nil
}
