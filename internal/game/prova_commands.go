package game

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ErrProvaNotFound indicates the referenced prova is not in the mirror.
var ErrProvaNotFound = errors.New("prova not found")

// ErrProvaInactive indicates a submission was attempted against a closed prova.
var ErrProvaInactive = errors.New("prova is not active")

// ErrInvalidMaxPoints indicates a non-positive maximum score.
var ErrInvalidMaxPoints = errors.New("max points must be a positive integer")

// ErrEmptyContent indicates submission content was empty after sanitization.
var ErrEmptyContent = errors.New("submission content must not be empty")

// ErrNoTeamMembership indicates the student has not joined a team yet.
var ErrNoTeamMembership = errors.New("student has no team")

// ErrAlreadySubmitted indicates the student already answered this prova.
var ErrAlreadySubmitted = errors.New("prova already submitted")

// ErrSubmissionNotFound indicates no embedded submission matches the id.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrPointsOutOfRange indicates a grade outside [0, maxPoints].
var ErrPointsOutOfRange = errors.New("points outside the allowed range")

// CreateProva writes a new prova, active and with no submissions.
func (c *Coordinator) CreateProva(ctx context.Context, p Principal, title, description, instructions string, maxPoints int) (models.Prova, error) {
	if !p.Authenticated() {
		return models.Prova{}, ErrNotAuthenticated
	}
	if maxPoints <= 0 {
		return models.Prova{}, ErrInvalidMaxPoints
	}

	prova := models.Prova{
		Title:        strings.TrimSpace(title),
		Description:  description,
		Instructions: instructions,
		MaxPoints:    maxPoints,
		IsActive:     true,
		Submissions:  datatypes.NewJSONSlice([]models.Submission{}),
		CreatedAt:    c.now().UTC(),
		CreatedBy:    p.ID,
	}

	if err := c.stores.Provas.Insert(ctx, &prova); err != nil {
		return models.Prova{}, err
	}
	return prova, nil
}

// UpdateProva overwrites the authorable fields. Activation state and the
// submission list are untouched.
func (c *Coordinator) UpdateProva(ctx context.Context, p Principal, provaID, title, description, instructions string, maxPoints int) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}
	if maxPoints <= 0 {
		return ErrInvalidMaxPoints
	}
	if _, ok := c.ProvaByID(provaID); !ok {
		return ErrProvaNotFound
	}

	return c.stores.Provas.Update(ctx, provaID, strings.TrimSpace(title), description, instructions, maxPoints)
}

// ToggleProvaStatus flips the activation gate on student submission.
func (c *Coordinator) ToggleProvaStatus(ctx context.Context, p Principal, provaID string, isActive bool) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}
	if _, ok := c.ProvaByID(provaID); !ok {
		return ErrProvaNotFound
	}

	return c.stores.Provas.SetActive(ctx, provaID, isActive)
}

// DeleteProva removes the prova record. The embedded submissions go with it.
func (c *Coordinator) DeleteProva(ctx context.Context, p Principal, provaID string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	return c.stores.Provas.Delete(ctx, provaID)
}

// SubmitProva files the principal's answer to a prova. The submission id is
// the composite studentID_provaID, and a second serial submit for the same
// pair is rejected rather than appended.
//
// The write rewrites the full embedded submission list. Two clients racing on
// the same prova can lose one append; this mirrors the source semantics of
// the embedded-list model and is deliberately not closed here.
func (c *Coordinator) SubmitProva(ctx context.Context, p Principal, provaID, content string) (models.Submission, error) {
	if !p.Authenticated() {
		return models.Submission{}, ErrNotAuthenticated
	}

	content = strings.TrimSpace(c.sanitizer.Sanitize(content))
	if content == "" {
		return models.Submission{}, ErrEmptyContent
	}

	profile, err := c.stores.Profiles.Get(ctx, p.ID)
	if err != nil {
		return models.Submission{}, err
	}
	if profile.TeamID == nil || *profile.TeamID == "" {
		return models.Submission{}, ErrNoTeamMembership
	}

	prova, ok := c.ProvaByID(provaID)
	if !ok {
		return models.Submission{}, ErrProvaNotFound
	}
	if !prova.IsActive {
		return models.Submission{}, ErrProvaInactive
	}

	team, ok := c.TeamByID(*profile.TeamID)
	if !ok {
		return models.Submission{}, ErrTeamNotFound
	}

	if _, exists := prova.SubmissionByStudent(p.ID); exists {
		return models.Submission{}, ErrAlreadySubmitted
	}

	submission := models.Submission{
		ID:             models.SubmissionID(p.ID, provaID),
		StudentID:      p.ID,
		StudentName:    profile.Name(),
		TeamID:         team.ID,
		TeamName:       team.Name,
		SubmittedAt:    c.now().UTC(),
		Content:        content,
		MaxPoints:      prova.MaxPoints,
		IsGradeVisible: false,
	}

	submissions := append(append([]models.Submission(nil), prova.Submissions...), submission)
	if err := c.stores.Provas.SetSubmissions(ctx, provaID, submissions); err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// EvaluateSubmission grades one submission. Points must land in
// [0, submission.MaxPoints]. Re-evaluation is permitted and overwrites the
// previous grade. The same full-list rewrite caveat as SubmitProva applies.
func (c *Coordinator) EvaluateSubmission(ctx context.Context, p Principal, provaID, submissionID string, points int, feedback string, isGradeVisible bool) (models.Submission, error) {
	ctx, span := c.tracer.Start(ctx, "game.evaluate_submission")
	span.SetAttributes(
		attribute.String("prova.id", provaID),
		attribute.String("submission.id", submissionID),
		attribute.Int("submission.points", points),
	)
	defer span.End()

	if !p.Authenticated() {
		span.SetStatus(codes.Error, "not_authenticated")
		return models.Submission{}, ErrNotAuthenticated
	}

	prova, ok := c.ProvaByID(provaID)
	if !ok {
		span.SetStatus(codes.Error, "prova_not_found")
		return models.Submission{}, ErrProvaNotFound
	}

	submission, ok := prova.FindSubmission(submissionID)
	if !ok {
		span.SetStatus(codes.Error, "submission_not_found")
		return models.Submission{}, ErrSubmissionNotFound
	}

	if points < 0 || points > submission.MaxPoints {
		span.RecordError(ErrPointsOutOfRange)
		span.SetStatus(codes.Error, "points_out_of_range")
		return models.Submission{}, ErrPointsOutOfRange
	}

	evaluatedAt := c.now().UTC()
	graded := submission
	graded.Points = &points
	graded.Feedback = strings.TrimSpace(feedback)
	graded.EvaluatedAt = &evaluatedAt
	graded.EvaluatedBy = p.ID
	graded.IsGradeVisible = isGradeVisible

	submissions := make([]models.Submission, len(prova.Submissions))
	for i, sub := range prova.Submissions {
		if sub.ID == submissionID {
			submissions[i] = graded
		} else {
			submissions[i] = sub
		}
	}

	if err := c.stores.Provas.SetSubmissions(ctx, provaID, submissions); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return models.Submission{}, err
	}

	return graded, nil
}
