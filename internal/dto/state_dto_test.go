package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

func stateFixture() ([]models.Team, []models.Prova, []models.TeamRanking, []models.ReviewRequest) {
	teams := []models.Team{
		{ID: "team-a", Name: "Alpha", Members: datatypes.NewJSONSlice([]string{"s1"})},
		{ID: "team-b", Name: "Beta", Members: datatypes.NewJSONSlice([]string{"s2"})},
	}
	provas := []models.Prova{
		{ID: "p1", Title: "Active", IsActive: true},
		{ID: "p2", Title: "Draft", IsActive: false},
	}
	ranking := []models.TeamRanking{{TeamID: "team-a", Position: 1}}
	reviews := []models.ReviewRequest{
		{ID: "r1", TeamID: "team-a"},
		{ID: "r2", TeamID: "team-b"},
	}
	return teams, provas, ranking, reviews
}

func TestStateSnapshotForInstructor(t *testing.T) {
	teams, provas, ranking, reviews := stateFixture()

	snapshot := NewStateSnapshot(teams, provas, ranking, false, reviews, "teacher-1", true)
	require.Len(t, snapshot.Provas, 2, "instructors see inactive provas")
	require.Len(t, snapshot.Ranking, 1, "instructors see the ranking even while hidden")
	require.Len(t, snapshot.ReviewRequests, 2)
	require.False(t, snapshot.RankingVisible)
}

func TestStateSnapshotForStudent(t *testing.T) {
	teams, provas, ranking, reviews := stateFixture()

	snapshot := NewStateSnapshot(teams, provas, ranking, false, reviews, "s1", false)
	require.Len(t, snapshot.Provas, 1, "students only see active provas")
	require.Equal(t, "Active", snapshot.Provas[0].Title)
	require.Empty(t, snapshot.Ranking, "hidden ranking is withheld from students")
	require.Len(t, snapshot.ReviewRequests, 1, "students only see their team's review requests")
	require.Equal(t, "r1", snapshot.ReviewRequests[0].ID)
}

func TestStateSnapshotStudentWithVisibleRanking(t *testing.T) {
	teams, provas, ranking, reviews := stateFixture()

	snapshot := NewStateSnapshot(teams, provas, ranking, true, reviews, "s2", false)
	require.Len(t, snapshot.Ranking, 1)
	require.True(t, snapshot.RankingVisible)
	require.Equal(t, "r2", snapshot.ReviewRequests[0].ID)
}

func TestStateSnapshotStudentWithoutTeam(t *testing.T) {
	teams, provas, ranking, reviews := stateFixture()

	snapshot := NewStateSnapshot(teams, provas, ranking, true, reviews, "ghost", false)
	require.Empty(t, snapshot.ReviewRequests)
}
