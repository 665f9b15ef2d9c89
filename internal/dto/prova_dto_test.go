package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

func gradedSubmission(studentID, provaID string, points int, visible bool) models.Submission {
	evaluatedAt := time.Now().UTC()
	return models.Submission{
		ID:             models.SubmissionID(studentID, provaID),
		StudentID:      studentID,
		Content:        "answer",
		Points:         &points,
		MaxPoints:      10,
		Feedback:       "notes",
		EvaluatedAt:    &evaluatedAt,
		EvaluatedBy:    "teacher-1",
		IsGradeVisible: visible,
	}
}

func TestNewProvaResponseKeepsAllSubmissions(t *testing.T) {
	prova := models.Prova{
		ID:        "p1",
		Title:     "Quiz 1",
		MaxPoints: 10,
		IsActive:  true,
		Submissions: datatypes.NewJSONSlice([]models.Submission{
			gradedSubmission("s1", "p1", 7, false),
			gradedSubmission("s2", "p1", 9, true),
		}),
	}

	response := NewProvaResponse(prova)
	require.Len(t, response.Submissions, 2)
	require.NotNil(t, response.Submissions[0].Points, "instructor view keeps hidden grades")
}

func TestNewStudentProvaResponseHidesOtherSubmissions(t *testing.T) {
	prova := models.Prova{
		ID:       "p1",
		IsActive: true,
		Submissions: datatypes.NewJSONSlice([]models.Submission{
			gradedSubmission("s1", "p1", 7, true),
			gradedSubmission("s2", "p1", 9, true),
		}),
	}

	response := NewStudentProvaResponse(prova, "s1")
	require.Len(t, response.Submissions, 1)
	require.Equal(t, "s1_p1", response.Submissions[0].ID)
}

func TestNewStudentProvaResponseBlanksHiddenGrade(t *testing.T) {
	prova := models.Prova{
		ID: "p1",
		Submissions: datatypes.NewJSONSlice([]models.Submission{
			gradedSubmission("s1", "p1", 7, false),
		}),
	}

	response := NewStudentProvaResponse(prova, "s1")
	require.Len(t, response.Submissions, 1)

	own := response.Submissions[0]
	require.Nil(t, own.Points, "grade stays hidden until released")
	require.Empty(t, own.Feedback)
	require.Nil(t, own.EvaluatedAt)
	require.Empty(t, own.EvaluatedBy)
	require.Equal(t, "answer", own.Content, "own content is always visible")
}

func TestNewStudentProvaResponseNoSubmission(t *testing.T) {
	prova := models.Prova{ID: "p1", IsActive: true}
	response := NewStudentProvaResponse(prova, "s1")
	require.Nil(t, response.Submissions)
}
