package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ReviewStatusUpdate carries the fields stamped by a status transition.
// Resolution is only written when non-nil, mirroring the store contract that
// unset optional fields are stripped rather than persisted as empty.
type ReviewStatusUpdate struct {
	Status         string
	ReviewedAt     time.Time
	ReviewedBy     string
	ReviewedByName string
	Resolution     *string
}

// ReviewStore persists the review requests collection.
type ReviewStore struct {
	db   *gorm.DB
	feed ChangeFeed
}

// NewReviewStore instantiates a GORM-backed review request store.
func NewReviewStore(db *gorm.DB, feed ChangeFeed) *ReviewStore {
	return &ReviewStore{db: db, feed: feed}
}

// All returns every review request, newest first.
func (s *ReviewStore) All(ctx context.Context) ([]models.ReviewRequest, error) {
	var reviews []models.ReviewRequest
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Insert stores a new review request, assigning an id when unset.
func (s *ReviewStore) Insert(ctx context.Context, review *models.ReviewRequest) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.Evidence == nil {
		review.Evidence = datatypes.NewJSONSlice([]models.EvidenceItem{})
	}

	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionReviewRequests)
	return nil
}

// UpdateStatus merges the transition stamps into the record.
func (s *ReviewStore) UpdateStatus(ctx context.Context, id string, update ReviewStatusUpdate) error {
	fields := map[string]interface{}{
		"status":           update.Status,
		"reviewed_at":      update.ReviewedAt,
		"reviewed_by":      update.ReviewedBy,
		"reviewed_by_name": update.ReviewedByName,
	}
	if update.Resolution != nil {
		fields["resolution"] = *update.Resolution
	}

	if err := s.db.WithContext(ctx).Model(&models.ReviewRequest{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionReviewRequests)
	return nil
}

// Delete removes the review request. Hard delete, any status.
func (s *ReviewStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.ReviewRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.feed.Announce(ctx, CollectionReviewRequests)
	return nil
}

// Subscribe returns a change signal for the review requests collection.
func (s *ReviewStore) Subscribe() (<-chan struct{}, func()) {
	return s.feed.Subscribe(CollectionReviewRequests)
}
