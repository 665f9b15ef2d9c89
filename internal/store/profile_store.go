package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ProfileStore persists user profiles and the credentials backing sign-in.
// Profiles are not mirrored by the coordinator, but writes are still announced
// so live state streams can refresh member listings.
type ProfileStore struct {
	db   *gorm.DB
	feed ChangeFeed
}

// NewProfileStore instantiates a GORM-backed profile store.
func NewProfileStore(db *gorm.DB, feed ChangeFeed) *ProfileStore {
	return &ProfileStore{db: db, feed: feed}
}

// Get fetches a profile by id.
func (s *ProfileStore) Get(ctx context.Context, id string) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// GetMany fetches the profiles for the given ids. Missing ids are skipped.
func (s *ProfileStore) GetMany(ctx context.Context, ids []string) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var profiles []models.UserProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Insert stores a new profile.
func (s *ProfileStore) Insert(ctx context.Context, profile *models.UserProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionProfiles)
	return nil
}

// SetTeam points the profile at a team, or clears the reference when nil.
func (s *ProfileStore) SetTeam(ctx context.Context, id string, teamID *string) error {
	return s.UpdateFields(ctx, id, map[string]interface{}{"team_id": teamID})
}

// UpdateFields merges partial profile fields into the record.
func (s *ProfileStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}

	s.feed.Announce(ctx, CollectionProfiles)
	return nil
}

// CredentialStore persists sign-in credentials.
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore instantiates a GORM-backed credential store.
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Insert stores a credential record.
func (s *CredentialStore) Insert(ctx context.Context, credential *models.Credential) error {
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(credential).Error
}

// GetByEmail fetches the credential registered for an email address.
func (s *CredentialStore) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	var credential models.Credential
	if err := s.db.WithContext(ctx).First(&credential, "email = ?", email).Error; err != nil {
		return models.Credential{}, err
	}
	return credential, nil
}
