package dto

import "github.com/gincana-dev/gincana-go-api/internal/models"

// StateSnapshot is the payload pushed over the live state stream whenever any
// mirror advances. Ranking rows are omitted for students while the ranking is
// hidden.
type StateSnapshot struct {
	Teams          []TeamResponse       `json:"teams"`
	Provas         []ProvaResponse      `json:"provas"`
	RankingVisible bool                 `json:"ranking_visible"`
	Ranking        []RankingRowResponse `json:"ranking,omitempty"`
	ReviewRequests []ReviewResponse     `json:"review_requests"`
}

// NewStateSnapshot assembles a role-aware snapshot. Instructors get the full
// state; students get active provas with only their own submission, their
// team's review requests, and the ranking only while it is visible.
func NewStateSnapshot(teams []models.Team, provas []models.Prova, ranking []models.TeamRanking, rankingVisible bool, reviews []models.ReviewRequest, viewerID string, instructor bool) StateSnapshot {
	snapshot := StateSnapshot{
		Teams:          NewTeamResponseSlice(teams),
		RankingVisible: rankingVisible,
	}

	if instructor {
		snapshot.Provas = NewProvaResponseSlice(provas)
		snapshot.Ranking = NewRankingRows(ranking)
		snapshot.ReviewRequests = NewReviewResponseSlice(reviews)
		return snapshot
	}

	active := make([]models.Prova, 0, len(provas))
	for _, prova := range provas {
		if prova.IsActive {
			active = append(active, prova)
		}
	}
	snapshot.Provas = NewStudentProvaResponseSlice(active, viewerID)

	if rankingVisible {
		snapshot.Ranking = NewRankingRows(ranking)
	}

	viewerTeam := ""
	for _, team := range teams {
		if team.HasMember(viewerID) {
			viewerTeam = team.ID
			break
		}
	}
	teamReviews := make([]models.ReviewRequest, 0)
	for _, review := range reviews {
		if viewerTeam != "" && review.TeamID == viewerTeam {
			teamReviews = append(teamReviews, review)
		}
	}
	snapshot.ReviewRequests = NewReviewResponseSlice(teamReviews)

	return snapshot
}
