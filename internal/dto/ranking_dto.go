package dto

import (
	"time"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ToggleRankingVisibilityRequest flips student visibility of the ranking.
type ToggleRankingVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" validate:"required"`
}

// RankingRowResponse is one projected ranking row.
type RankingRowResponse struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	TeamColor   string `json:"team_color"`
	TotalPoints int    `json:"total_points"`
	MemberCount int    `json:"member_count"`
	Position    int    `json:"position"`
}

// RankingResponse carries the projected ranking and its visibility state.
type RankingResponse struct {
	IsVisible   bool                 `json:"is_visible"`
	LastUpdated time.Time            `json:"last_updated"`
	Rows        []RankingRowResponse `json:"rows"`
}

// NewRankingRows converts projected ranking rows into DTOs.
func NewRankingRows(rows []models.TeamRanking) []RankingRowResponse {
	out := make([]RankingRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, RankingRowResponse{
			TeamID:      row.TeamID,
			TeamName:    row.TeamName,
			TeamColor:   row.TeamColor,
			TotalPoints: row.TotalPoints,
			MemberCount: row.MemberCount,
			Position:    row.Position,
		})
	}
	return out
}
