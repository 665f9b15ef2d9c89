package dto

import (
	"time"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// TeamCreateRequest carries the fields of a new team.
type TeamCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Color       string `json:"color" validate:"required,max=32"`
}

// TeamUpdateRequest overwrites the three mutable display fields.
type TeamUpdateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Color       string `json:"color" validate:"required,max=32"`
}

// TransferMemberRequest moves a member between two teams.
type TransferMemberRequest struct {
	MemberID   string `json:"member_id" validate:"required"`
	FromTeamID string `json:"from_team_id" validate:"required"`
	ToTeamID   string `json:"to_team_id" validate:"required"`
}

// TeamResponse is the team record returned to clients.
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Members     []string  `json:"members"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// TeamMemberResponse summarises one member of a team roster.
type TeamMemberResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// NewTeamResponse converts a team model into a DTO.
func NewTeamResponse(model models.Team) TeamResponse {
	return TeamResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Color:       model.Color,
		Members:     append([]string(nil), model.Members...),
		MemberCount: len(model.Members),
		CreatedAt:   model.CreatedAt,
		CreatedBy:   model.CreatedBy,
	}
}

// NewTeamResponseSlice converts team models into DTOs.
func NewTeamResponseSlice(teams []models.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, NewTeamResponse(team))
	}
	return responses
}

// NewTeamMemberResponseSlice converts member profiles into DTOs.
func NewTeamMemberResponseSlice(profiles []models.UserProfile) []TeamMemberResponse {
	responses := make([]TeamMemberResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, TeamMemberResponse{
			ID:          profile.ID,
			Email:       profile.Email,
			DisplayName: profile.DisplayName,
		})
	}
	return responses
}
