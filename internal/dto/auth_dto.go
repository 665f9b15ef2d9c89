package dto

import (
	"time"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// SignUpRequest registers a new identity and its profile record.
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=student instructor admin"`
	DisplayName string `json:"display_name" validate:"omitempty,max=255"`
	Age         *int   `json:"age" validate:"omitempty,gte=1,lte=120"`
	Grade       string `json:"grade" validate:"omitempty,max=64"`
	Class       string `json:"class" validate:"omitempty,max=64"`
}

// SignInRequest authenticates an existing identity.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest edits the mutable profile fields. Nil fields are left
// untouched.
type ProfileUpdateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	Age         *int    `json:"age" validate:"omitempty,gte=1,lte=120"`
	Grade       *string `json:"grade" validate:"omitempty,max=64"`
	Class       *string `json:"class" validate:"omitempty,max=64"`
}

// ProfileResponse is the profile record returned to clients.
type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name,omitempty"`
	TeamID      *string   `json:"team_id"`
	Age         *int      `json:"age,omitempty"`
	Grade       string    `json:"grade,omitempty"`
	Class       string    `json:"class,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResponse carries the issued token and the authenticated profile.
type AuthResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

// NewProfileResponse converts a profile model into a DTO.
func NewProfileResponse(model models.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:          model.ID,
		Email:       model.Email,
		Role:        model.Role,
		DisplayName: model.DisplayName,
		TeamID:      model.TeamID,
		Age:         model.Age,
		Grade:       model.Grade,
		Class:       model.Class,
		CreatedAt:   model.CreatedAt,
	}
}
