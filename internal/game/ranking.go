package game

import (
	"context"
	"sort"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ProjectRanking derives the ranking from teams and provas. A submission
// counts toward its team's total only when it has been graded and the grade
// has been made visible. Team.TotalPoints is never consulted.
//
// Teams are ordered by total descending with a stable sort, so tied teams
// keep their mirror order; the tie-break is deliberately unspecified.
// Positions are consecutive (index+1), so two teams tied for first rank 1
// and 2, not 1 and 1.
func ProjectRanking(teams []models.Team, provas []models.Prova) []models.TeamRanking {
	rows := make([]models.TeamRanking, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, models.TeamRanking{
			TeamID:      team.ID,
			TeamName:    team.Name,
			TeamColor:   team.Color,
			TotalPoints: teamPoints(team.ID, provas),
			MemberCount: len(team.Members),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})

	for i := range rows {
		rows[i].Position = i + 1
	}

	return rows
}

func teamPoints(teamID string, provas []models.Prova) int {
	total := 0
	for _, prova := range provas {
		for _, sub := range prova.Submissions {
			if sub.TeamID == teamID && sub.Points != nil && sub.IsGradeVisible {
				total += *sub.Points
			}
		}
	}
	return total
}

// ToggleRankingVisibility flips whether students may see the ranking. The
// singleton settings record is created on first toggle if the lazy
// subscription init has not materialised it yet.
func (c *Coordinator) ToggleRankingVisibility(ctx context.Context, p Principal, isVisible bool) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	settings, ok := c.RankingSettings()
	if !ok {
		created := models.RankingSettings{
			IsVisible:   isVisible,
			LastUpdated: c.now().UTC(),
			UpdatedBy:   p.ID,
		}
		return c.stores.Settings.Insert(ctx, &created)
	}

	return c.stores.Settings.Update(ctx, settings.ID, isVisible, p.ID, c.now().UTC())
}
