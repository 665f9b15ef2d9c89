package dto

import (
	"time"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// EvidenceItemRequest is a client-supplied evidence attachment.
type EvidenceItemRequest struct {
	Type        string `json:"type" validate:"required,oneof=image video document link"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ReviewCreateRequest files a new review request.
type ReviewCreateRequest struct {
	Title         string                `json:"title" validate:"required,max=255"`
	Description   string                `json:"description" validate:"required,max=5000"`
	Reason        string                `json:"reason" validate:"required,max=64"`
	Priority      string                `json:"priority" validate:"omitempty,oneof=low medium high"`
	Evidence      []EvidenceItemRequest `json:"evidence" validate:"omitempty,dive"`
	TargetTeamID  string                `json:"target_team_id" validate:"omitempty"`
	TargetProvaID string                `json:"target_prova_id" validate:"omitempty"`
}

// ReviewStatusUpdateRequest applies a workflow transition.
type ReviewStatusUpdateRequest struct {
	Status     string  `json:"status" validate:"required,oneof=pending under_review resolved rejected"`
	Resolution *string `json:"resolution" validate:"omitempty,max=5000"`
}

// EvidenceItemResponse is an evidence attachment as returned to clients.
type EvidenceItemResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ReviewResponse is a review request as returned to clients.
type ReviewResponse struct {
	ID               string                 `json:"id"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Reason           string                 `json:"reason"`
	Priority         string                 `json:"priority"`
	Evidence         []EvidenceItemResponse `json:"evidence"`
	Status           string                 `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	CreatedBy        string                 `json:"created_by"`
	CreatedByName    string                 `json:"created_by_name"`
	TeamID           string                 `json:"team_id"`
	TeamName         string                 `json:"team_name"`
	TargetTeamID     string                 `json:"target_team_id,omitempty"`
	TargetTeamName   string                 `json:"target_team_name,omitempty"`
	TargetProvaID    string                 `json:"target_prova_id,omitempty"`
	TargetProvaTitle string                 `json:"target_prova_title,omitempty"`
	ReviewedAt       *time.Time             `json:"reviewed_at,omitempty"`
	ReviewedBy       string                 `json:"reviewed_by,omitempty"`
	ReviewedByName   string                 `json:"reviewed_by_name,omitempty"`
	Resolution       string                 `json:"resolution,omitempty"`
}

// EvidenceUploadResponse is returned after an evidence file upload: the
// caller folds it into a ReviewCreateRequest evidence entry.
type EvidenceUploadResponse struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// NewReviewResponse converts a review request model into a DTO.
func NewReviewResponse(model models.ReviewRequest) ReviewResponse {
	evidence := make([]EvidenceItemResponse, 0, len(model.Evidence))
	for _, item := range model.Evidence {
		evidence = append(evidence, EvidenceItemResponse{
			ID:          item.ID,
			Type:        item.Type,
			URL:         item.URL,
			Description: item.Description,
			UploadedAt:  item.UploadedAt,
		})
	}

	return ReviewResponse{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		Reason:           model.Reason,
		Priority:         model.Priority,
		Evidence:         evidence,
		Status:           model.Status,
		CreatedAt:        model.CreatedAt,
		CreatedBy:        model.CreatedBy,
		CreatedByName:    model.CreatedByName,
		TeamID:           model.TeamID,
		TeamName:         model.TeamName,
		TargetTeamID:     model.TargetTeamID,
		TargetTeamName:   model.TargetTeamName,
		TargetProvaID:    model.TargetProvaID,
		TargetProvaTitle: model.TargetProvaTitle,
		ReviewedAt:       model.ReviewedAt,
		ReviewedBy:       model.ReviewedBy,
		ReviewedByName:   model.ReviewedByName,
		Resolution:       model.Resolution,
	}
}

// NewReviewResponseSlice converts review request models into DTOs.
func NewReviewResponseSlice(reviews []models.ReviewRequest) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, NewReviewResponse(review))
	}
	return responses
}
