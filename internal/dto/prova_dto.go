package dto

import (
	"time"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ProvaCreateRequest carries the fields of a new prova.
type ProvaCreateRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Instructions string `json:"instructions" validate:"omitempty,max=10000"`
	MaxPoints    int    `json:"max_points" validate:"required,gt=0"`
}

// ProvaUpdateRequest overwrites the authorable fields.
type ProvaUpdateRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Instructions string `json:"instructions" validate:"omitempty,max=10000"`
	MaxPoints    int    `json:"max_points" validate:"required,gt=0"`
}

// ProvaToggleRequest flips the activation gate.
type ProvaToggleRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SubmitProvaRequest files a student answer.
type SubmitProvaRequest struct {
	Content string `json:"content" validate:"required"`
}

// EvaluateSubmissionRequest grades one submission.
type EvaluateSubmissionRequest struct {
	Points         *int   `json:"points" validate:"required,gte=0"`
	Feedback       string `json:"feedback" validate:"omitempty,max=5000"`
	IsGradeVisible bool   `json:"is_grade_visible"`
}

// SubmissionResponse is a submission as returned to clients.
type SubmissionResponse struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"student_id"`
	StudentName    string     `json:"student_name"`
	TeamID         string     `json:"team_id"`
	TeamName       string     `json:"team_name"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Content        string     `json:"content"`
	Points         *int       `json:"points,omitempty"`
	MaxPoints      int        `json:"max_points"`
	Feedback       string     `json:"feedback,omitempty"`
	EvaluatedAt    *time.Time `json:"evaluated_at,omitempty"`
	EvaluatedBy    string     `json:"evaluated_by,omitempty"`
	IsGradeVisible bool       `json:"is_grade_visible"`
}

// ProvaResponse is a prova as returned to instructors, submissions included.
type ProvaResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Instructions string               `json:"instructions,omitempty"`
	MaxPoints    int                  `json:"max_points"`
	IsActive     bool                 `json:"is_active"`
	Submissions  []SubmissionResponse `json:"submissions"`
	CreatedAt    time.Time            `json:"created_at"`
	CreatedBy    string               `json:"created_by"`
}

// NewSubmissionResponse converts a submission into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             model.ID,
		StudentID:      model.StudentID,
		StudentName:    model.StudentName,
		TeamID:         model.TeamID,
		TeamName:       model.TeamName,
		SubmittedAt:    model.SubmittedAt,
		Content:        model.Content,
		Points:         model.Points,
		MaxPoints:      model.MaxPoints,
		Feedback:       model.Feedback,
		EvaluatedAt:    model.EvaluatedAt,
		EvaluatedBy:    model.EvaluatedBy,
		IsGradeVisible: model.IsGradeVisible,
	}
}

// NewProvaResponse converts a prova into the full instructor-facing DTO.
func NewProvaResponse(model models.Prova) ProvaResponse {
	submissions := make([]SubmissionResponse, 0, len(model.Submissions))
	for _, sub := range model.Submissions {
		submissions = append(submissions, NewSubmissionResponse(sub))
	}

	return ProvaResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Instructions: model.Instructions,
		MaxPoints:    model.MaxPoints,
		IsActive:     model.IsActive,
		Submissions:  submissions,
		CreatedAt:    model.CreatedAt,
		CreatedBy:    model.CreatedBy,
	}
}

// NewProvaResponseSlice converts prova models into instructor-facing DTOs.
func NewProvaResponseSlice(provas []models.Prova) []ProvaResponse {
	responses := make([]ProvaResponse, 0, len(provas))
	for _, prova := range provas {
		responses = append(responses, NewProvaResponse(prova))
	}
	return responses
}

// NewStudentProvaResponse converts a prova into the student-facing DTO: only
// the student's own submission is included, and its grade fields are blanked
// until the instructor makes the grade visible.
func NewStudentProvaResponse(model models.Prova, studentID string) ProvaResponse {
	response := NewProvaResponse(model)
	response.Submissions = nil

	if own, ok := model.SubmissionByStudent(studentID); ok {
		sub := NewSubmissionResponse(own)
		if !own.IsGradeVisible {
			sub.Points = nil
			sub.Feedback = ""
			sub.EvaluatedAt = nil
			sub.EvaluatedBy = ""
		}
		response.Submissions = []SubmissionResponse{sub}
	}

	return response
}

// NewStudentProvaResponseSlice converts prova models into student-facing DTOs.
func NewStudentProvaResponseSlice(provas []models.Prova, studentID string) []ProvaResponse {
	responses := make([]ProvaResponse, 0, len(provas))
	for _, prova := range provas {
		responses = append(responses, NewStudentProvaResponse(prova, studentID))
	}
	return responses
}
