package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/store"
)

// ErrReviewNotFound indicates the referenced review request is not mirrored.
var ErrReviewNotFound = errors.New("review request not found")

// ErrReviewClosed indicates the review request is in a terminal state.
var ErrReviewClosed = errors.New("review request already closed")

// ErrInvalidReviewStatus indicates an unknown status value.
var ErrInvalidReviewStatus = errors.New("invalid review status")

// ErrInvalidReviewTransition indicates a transition the workflow forbids.
var ErrInvalidReviewTransition = errors.New("invalid review status transition")

// ErrInvalidPriority indicates an unknown priority value.
var ErrInvalidPriority = errors.New("invalid review priority")

// reviewTransitions is the workflow table. Pending may skip straight to a
// terminal state; resolved and rejected have no outgoing transitions.
var reviewTransitions = map[string][]string{
	models.ReviewStatusPending:     {models.ReviewStatusUnderReview, models.ReviewStatusResolved, models.ReviewStatusRejected},
	models.ReviewStatusUnderReview: {models.ReviewStatusResolved, models.ReviewStatusRejected},
	models.ReviewStatusResolved:    {},
	models.ReviewStatusRejected:    {},
}

// CanTransitionReview reports whether the workflow allows moving a review
// request from one status to another.
func CanTransitionReview(from, to string) bool {
	for _, allowed := range reviewTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EvidenceInput is a client-supplied evidence attachment. Ids and upload
// timestamps are assigned server-side.
type EvidenceInput struct {
	Type        string
	URL         string
	Description string
}

// ReviewRequestInput carries the client-authored fields of a new review
// request. Target references are optional; their display names are
// denormalized from the mirrors at creation time.
type ReviewRequestInput struct {
	Title         string
	Description   string
	Reason        string
	Priority      string
	Evidence      []EvidenceInput
	TargetTeamID  string
	TargetProvaID string
}

// CreateReviewRequest files a contest on behalf of the principal's team. The
// request starts pending; creation and evidence timestamps are stamped
// server-side, overriding anything the client supplied.
func (c *Coordinator) CreateReviewRequest(ctx context.Context, p Principal, input ReviewRequestInput) (models.ReviewRequest, error) {
	if !p.Authenticated() {
		return models.ReviewRequest{}, ErrNotAuthenticated
	}

	priority := input.Priority
	if priority == "" {
		priority = models.ReviewPriorityMedium
	}
	switch priority {
	case models.ReviewPriorityLow, models.ReviewPriorityMedium, models.ReviewPriorityHigh:
	default:
		return models.ReviewRequest{}, ErrInvalidPriority
	}

	profile, err := c.stores.Profiles.Get(ctx, p.ID)
	if err != nil {
		return models.ReviewRequest{}, err
	}
	if profile.TeamID == nil || *profile.TeamID == "" {
		return models.ReviewRequest{}, ErrNoTeamMembership
	}

	team, ok := c.TeamByID(*profile.TeamID)
	if !ok {
		return models.ReviewRequest{}, ErrTeamNotFound
	}

	now := c.now().UTC()
	evidence := make([]models.EvidenceItem, 0, len(input.Evidence))
	for _, item := range input.Evidence {
		evidence = append(evidence, models.EvidenceItem{
			ID:          uuid.NewString(),
			Type:        item.Type,
			URL:         item.URL,
			Description: item.Description,
			UploadedAt:  now,
		})
	}

	review := models.ReviewRequest{
		Title:         input.Title,
		Description:   input.Description,
		Reason:        input.Reason,
		Priority:      priority,
		Evidence:      datatypes.NewJSONSlice(evidence),
		Status:        models.ReviewStatusPending,
		CreatedAt:     now,
		CreatedBy:     p.ID,
		CreatedByName: profile.Name(),
		TeamID:        team.ID,
		TeamName:      team.Name,
	}

	if input.TargetTeamID != "" {
		review.TargetTeamID = input.TargetTeamID
		if target, ok := c.TeamByID(input.TargetTeamID); ok {
			review.TargetTeamName = target.Name
		}
	}
	if input.TargetProvaID != "" {
		review.TargetProvaID = input.TargetProvaID
		if target, ok := c.ProvaByID(input.TargetProvaID); ok {
			review.TargetProvaTitle = target.Title
		}
	}

	if err := c.stores.Reviews.Insert(ctx, &review); err != nil {
		return models.ReviewRequest{}, err
	}
	return review, nil
}

// UpdateReviewStatus applies a workflow transition. Only instructors hold
// transition authority; resolved and rejected requests reject any further
// transition.
func (c *Coordinator) UpdateReviewStatus(ctx context.Context, p Principal, reviewID, newStatus string, resolution *string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}
	if !p.IsInstructor() {
		return ErrInstructorOnly
	}
	if !models.ValidReviewStatus(newStatus) {
		return ErrInvalidReviewStatus
	}

	review, ok := c.ReviewRequestByID(reviewID)
	if !ok {
		return ErrReviewNotFound
	}

	if !CanTransitionReview(review.Status, newStatus) {
		if models.IsTerminalReviewStatus(review.Status) {
			return ErrReviewClosed
		}
		return ErrInvalidReviewTransition
	}

	reviewerName := p.ID
	if profile, err := c.stores.Profiles.Get(ctx, p.ID); err == nil {
		reviewerName = profile.Name()
	}

	return c.stores.Reviews.UpdateStatus(ctx, reviewID, store.ReviewStatusUpdate{
		Status:         newStatus,
		ReviewedAt:     c.now().UTC(),
		ReviewedBy:     p.ID,
		ReviewedByName: reviewerName,
		Resolution:     resolution,
	})
}

// DeleteReviewRequest hard-deletes a review request, whatever its status.
func (c *Coordinator) DeleteReviewRequest(ctx context.Context, p Principal, reviewID string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}
	if !p.IsInstructor() {
		return ErrInstructorOnly
	}

	return c.stores.Reviews.Delete(ctx, reviewID)
}
