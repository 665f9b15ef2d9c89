package models

import (
	"time"

	"gorm.io/datatypes"
)

// Review request statuses. Pending is the initial state; resolved and
// rejected are terminal.
const (
	ReviewStatusPending     = "pending"
	ReviewStatusUnderReview = "under_review"
	ReviewStatusResolved    = "resolved"
	ReviewStatusRejected    = "rejected"
)

// Review request priorities.
const (
	ReviewPriorityLow    = "low"
	ReviewPriorityMedium = "medium"
	ReviewPriorityHigh   = "high"
)

// Evidence item types.
const (
	EvidenceTypeImage    = "image"
	EvidenceTypeVideo    = "video"
	EvidenceTypeDocument = "document"
	EvidenceTypeLink     = "link"
)

// ReviewRequest is a contest filed by a team member against a score or a
// decision. Status transitions are applied only by instructors.
type ReviewRequest struct {
	ID               string                            `gorm:"primaryKey;size:36" json:"id"`
	Title            string                            `gorm:"size:255;not null" json:"title"`
	Description      string                            `gorm:"type:text" json:"description"`
	Reason           string                            `gorm:"size:64;not null" json:"reason"`
	Priority         string                            `gorm:"size:16;not null" json:"priority"`
	Evidence         datatypes.JSONSlice[EvidenceItem] `json:"evidence"`
	Status           string                            `gorm:"size:32;not null" json:"status"`
	CreatedAt        time.Time                         `json:"created_at"`
	CreatedBy        string                            `gorm:"size:36" json:"created_by"`
	CreatedByName    string                            `gorm:"size:255" json:"created_by_name"`
	TeamID           string                            `gorm:"size:36" json:"team_id"`
	TeamName         string                            `gorm:"size:255" json:"team_name"`
	TargetTeamID     string                            `gorm:"size:36" json:"target_team_id,omitempty"`
	TargetTeamName   string                            `gorm:"size:255" json:"target_team_name,omitempty"`
	TargetProvaID    string                            `gorm:"size:36" json:"target_prova_id,omitempty"`
	TargetProvaTitle string                            `gorm:"size:255" json:"target_prova_title,omitempty"`
	ReviewedAt       *time.Time                        `json:"reviewed_at,omitempty"`
	ReviewedBy       string                            `gorm:"size:36" json:"reviewed_by,omitempty"`
	ReviewedByName   string                            `gorm:"size:255" json:"reviewed_by_name,omitempty"`
	Resolution       string                            `gorm:"type:text" json:"resolution,omitempty"`
}

// EvidenceItem is an attachment supporting a review request.
type EvidenceItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ValidReviewStatus reports whether the value is a known review status.
func ValidReviewStatus(status string) bool {
	switch status {
	case ReviewStatusPending, ReviewStatusUnderReview, ReviewStatusResolved, ReviewStatusRejected:
		return true
	}
	return false
}

// IsTerminalReviewStatus reports whether no further transitions are allowed.
func IsTerminalReviewStatus(status string) bool {
	return status == ReviewStatusResolved || status == ReviewStatusRejected
}
