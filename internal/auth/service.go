package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/dto"
	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ErrEmailTaken indicates sign-up with an already registered email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials indicates a failed sign-in.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrProfileNotFound indicates the profile record is missing.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore is the profile persistence the identity service needs.
type ProfileStore interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
	Insert(ctx context.Context, profile *models.UserProfile) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// CredentialStore is the credential persistence the identity service needs.
type CredentialStore interface {
	Insert(ctx context.Context, credential *models.Credential) error
	GetByEmail(ctx context.Context, email string) (models.Credential, error)
}

// Service implements sign-up, sign-in and profile management. Sign-out is a
// client-side token discard; tokens are not tracked server-side.
type Service struct {
	profiles    ProfileStore
	credentials CredentialStore
	validator   *validator.Validate
	jwtSecret   string
	tokenTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService constructs the identity service.
func NewService(profiles ProfileStore, credentials CredentialStore, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		profiles:    profiles,
		credentials: credentials,
		validator:   validate,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		logger:      logger.With().Str("component", "auth_service").Logger(),
		now:         time.Now,
	}
}

// SignUp registers a new identity, stores its profile, and issues a token.
func (s *Service) SignUp(ctx context.Context, payload dto.SignUpRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.credentials.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	profile := models.UserProfile{
		ID:          uuid.NewString(),
		Email:       email,
		Role:        payload.Role,
		DisplayName: strings.TrimSpace(payload.DisplayName),
		Age:         payload.Age,
		Grade:       payload.Grade,
		Class:       payload.Class,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.profiles.Insert(ctx, &profile); err != nil {
		return dto.AuthResponse{}, err
	}

	credential := models.Credential{
		ProfileID:    profile.ID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    profile.CreatedAt,
	}
	if err := s.credentials.Insert(ctx, &credential); err != nil {
		return dto.AuthResponse{}, err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("profile_id", profile.ID).Str("role", profile.Role).Msg("identity registered")

	return dto.AuthResponse{Token: token, Profile: dto.NewProfileResponse(profile)}, nil
}

// SignIn authenticates an existing identity and issues a token.
func (s *Service) SignIn(ctx context.Context, payload dto.SignInRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	credential, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	profile, err := s.profiles.Get(ctx, credential.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrProfileNotFound
		}
		return dto.AuthResponse{}, err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, Profile: dto.NewProfileResponse(profile)}, nil
}

// Profile fetches the profile record for an identity.
func (s *Service) Profile(ctx context.Context, id string) (dto.ProfileResponse, error) {
	profile, err := s.profiles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}

// UpdateProfile merges the supplied fields into the profile record.
func (s *Service) UpdateProfile(ctx context.Context, id string, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	fields := map[string]interface{}{}
	if payload.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*payload.DisplayName)
	}
	if payload.Age != nil {
		fields["age"] = *payload.Age
	}
	if payload.Grade != nil {
		fields["grade"] = *payload.Grade
	}
	if payload.Class != nil {
		fields["class"] = *payload.Class
	}

	if len(fields) > 0 {
		if err := s.profiles.UpdateFields(ctx, id, fields); err != nil {
			return dto.ProfileResponse{}, err
		}
	}

	return s.Profile(ctx, id)
}
