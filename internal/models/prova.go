package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Prova is an instructor-authored challenge. Submissions are embedded in the
// prova record: deleting a prova removes every submission with it.
type Prova struct {
	ID           string                          `gorm:"primaryKey;size:36" json:"id"`
	Title        string                          `gorm:"size:255;not null" json:"title"`
	Description  string                          `gorm:"type:text" json:"description"`
	Instructions string                          `gorm:"type:text" json:"instructions"`
	MaxPoints    int                             `gorm:"not null" json:"max_points"`
	IsActive     bool                            `gorm:"not null" json:"is_active"`
	Submissions  datatypes.JSONSlice[Submission] `json:"submissions"`
	CreatedAt    time.Time                       `json:"created_at"`
	CreatedBy    string                          `gorm:"size:36" json:"created_by"`
}

// Submission is one student's answer to a prova. Its id is the composite
// studentID_provaID, so a (student, prova) pair maps to exactly one entry.
// Student and team names are snapshots taken at submission time; later
// renames do not rewrite history.
type Submission struct {
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

// SubmissionID derives the composite submission id for a (student, prova) pair.
func SubmissionID(studentID, provaID string) string {
	return fmt.Sprintf("%s_%s", studentID, provaID)
}

// IsEvaluated reports whether the submission has been graded.
func (s Submission) IsEvaluated() bool {
	return s.Points != nil
}

// FindSubmission returns the embedded submission with the given id, if any.
func (p Prova) FindSubmission(submissionID string) (Submission, bool) {
	for _, sub := range p.Submissions {
		if sub.ID == submissionID {
			return sub, true
		}
	}
	return Submission{}, false
}

// SubmissionByStudent returns the submission filed by the student, if any.
func (p Prova) SubmissionByStudent(studentID string) (Submission, bool) {
	return p.FindSubmission(SubmissionID(studentID, p.ID))
}
