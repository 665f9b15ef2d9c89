package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/store"
)

type fakeTeamStore struct {
	teams []models.Team
}

func (f *fakeTeamStore) All(_ context.Context) ([]models.Team, error) {
	return append([]models.Team(nil), f.teams...), nil
}

func (f *fakeTeamStore) Insert(_ context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	f.teams = append(f.teams, *team)
	return nil
}

func (f *fakeTeamStore) Update(_ context.Context, id, name, description, color string) error {
	for i := range f.teams {
		if f.teams[i].ID == id {
			f.teams[i].Name = name
			f.teams[i].Description = description
			f.teams[i].Color = color
			return nil
		}
	}
	return errors.New("team missing")
}

func (f *fakeTeamStore) SetMembers(_ context.Context, id string, members []string) error {
	for i := range f.teams {
		if f.teams[i].ID == id {
			f.teams[i].Members = datatypes.NewJSONSlice(members)
			return nil
		}
	}
	return errors.New("team missing")
}

func (f *fakeTeamStore) Delete(_ context.Context, id string) error {
	for i := range f.teams {
		if f.teams[i].ID == id {
			f.teams = append(f.teams[:i], f.teams[i+1:]...)
			return nil
		}
	}
	return errors.New("team missing")
}

func (f *fakeTeamStore) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

type fakeProvaStore struct {
	provas []models.Prova
}

func (f *fakeProvaStore) All(_ context.Context) ([]models.Prova, error) {
	return append([]models.Prova(nil), f.provas...), nil
}

func (f *fakeProvaStore) Insert(_ context.Context, prova *models.Prova) error {
	if prova.ID == "" {
		prova.ID = uuid.NewString()
	}
	f.provas = append(f.provas, *prova)
	return nil
}

func (f *fakeProvaStore) Update(_ context.Context, id, title, description, instructions string, maxPoints int) error {
	for i := range f.provas {
		if f.provas[i].ID == id {
			f.provas[i].Title = title
			f.provas[i].Description = description
			f.provas[i].Instructions = instructions
			f.provas[i].MaxPoints = maxPoints
			return nil
		}
	}
	return errors.New("prova missing")
}

func (f *fakeProvaStore) SetActive(_ context.Context, id string, isActive bool) error {
	for i := range f.provas {
		if f.provas[i].ID == id {
			f.provas[i].IsActive = isActive
			return nil
		}
	}
	return errors.New("prova missing")
}

func (f *fakeProvaStore) SetSubmissions(_ context.Context, id string, submissions []models.Submission) error {
	for i := range f.provas {
		if f.provas[i].ID == id {
			f.provas[i].Submissions = datatypes.NewJSONSlice(submissions)
			return nil
		}
	}
	return errors.New("prova missing")
}

func (f *fakeProvaStore) Delete(_ context.Context, id string) error {
	for i := range f.provas {
		if f.provas[i].ID == id {
			f.provas = append(f.provas[:i], f.provas[i+1:]...)
			return nil
		}
	}
	return errors.New("prova missing")
}

func (f *fakeProvaStore) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

type fakeSettingsStore struct {
	settings []models.RankingSettings
	inserts  int
}

func (f *fakeSettingsStore) All(_ context.Context) ([]models.RankingSettings, error) {
	return append([]models.RankingSettings(nil), f.settings...), nil
}

func (f *fakeSettingsStore) Insert(_ context.Context, settings *models.RankingSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	f.settings = append(f.settings, *settings)
	f.inserts++
	return nil
}

func (f *fakeSettingsStore) Update(_ context.Context, id string, isVisible bool, updatedBy string, at time.Time) error {
	for i := range f.settings {
		if f.settings[i].ID == id {
			f.settings[i].IsVisible = isVisible
			f.settings[i].UpdatedBy = updatedBy
			f.settings[i].LastUpdated = at
			return nil
		}
	}
	return errors.New("settings missing")
}

func (f *fakeSettingsStore) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

type fakeReviewStore struct {
	reviews []models.ReviewRequest
}

func (f *fakeReviewStore) All(_ context.Context) ([]models.ReviewRequest, error) {
	return append([]models.ReviewRequest(nil), f.reviews...), nil
}

func (f *fakeReviewStore) Insert(_ context.Context, review *models.ReviewRequest) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviewStore) UpdateStatus(_ context.Context, id string, update store.ReviewStatusUpdate) error {
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			reviewedAt := update.ReviewedAt
			f.reviews[i].Status = update.Status
			f.reviews[i].ReviewedAt = &reviewedAt
			f.reviews[i].ReviewedBy = update.ReviewedBy
			f.reviews[i].ReviewedByName = update.ReviewedByName
			if update.Resolution != nil {
				f.reviews[i].Resolution = *update.Resolution
			}
			return nil
		}
	}
	return errors.New("review missing")
}

func (f *fakeReviewStore) Delete(_ context.Context, id string) error {
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return errors.New("review missing")
}

func (f *fakeReviewStore) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

type fakeProfileStore struct {
	profiles       map[string]*models.UserProfile
	failSetTeamFor string
}

func (f *fakeProfileStore) Get(_ context.Context, id string) (models.UserProfile, error) {
	if profile, ok := f.profiles[id]; ok {
		return *profile, nil
	}
	return models.UserProfile{}, errors.New("profile missing")
}

func (f *fakeProfileStore) GetMany(_ context.Context, ids []string) ([]models.UserProfile, error) {
	out := make([]models.UserProfile, 0, len(ids))
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out = append(out, *profile)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) SetTeam(_ context.Context, id string, teamID *string) error {
	if id == f.failSetTeamFor {
		return errors.New("profile write refused")
	}
	profile, ok := f.profiles[id]
	if !ok {
		return errors.New("profile missing")
	}
	profile.TeamID = teamID
	return nil
}

type testEnv struct {
	coordinator *Coordinator
	teams       *fakeTeamStore
	provas      *fakeProvaStore
	settings    *fakeSettingsStore
	reviews     *fakeReviewStore
	profiles    *fakeProfileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		teams:    &fakeTeamStore{},
		provas:   &fakeProvaStore{},
		settings: &fakeSettingsStore{},
		reviews:  &fakeReviewStore{},
		profiles: &fakeProfileStore{profiles: map[string]*models.UserProfile{}},
	}
	env.coordinator = New(Stores{
		Teams:    env.teams,
		Provas:   env.provas,
		Settings: env.settings,
		Reviews:  env.reviews,
		Profiles: env.profiles,
	}, zerolog.Nop())
	env.coordinator.now = func() time.Time {
		return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	}
	return env
}

func (e *testEnv) resync(t *testing.T) {
	t.Helper()
	require.NoError(t, e.coordinator.Resync(context.Background()))
}

func (e *testEnv) addProfile(id, role, name string) {
	e.profiles.profiles[id] = &models.UserProfile{ID: id, Email: id + "@example.com", Role: role, DisplayName: name}
}

var (
	instructor = Principal{ID: "teacher-1", Role: models.RoleInstructor}
	student    = Principal{ID: "student-1", Role: models.RoleStudent}
)

func TestCommandsRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	anon := Principal{}

	_, err := env.coordinator.CreateTeam(ctx, anon, "Alpha", "", "#f00")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = env.coordinator.SubmitProva(ctx, anon, "p1", "answer")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	err = env.coordinator.UpdateReviewStatus(ctx, anon, "r1", models.ReviewStatusResolved, nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestJoinTeamIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "first team", "#f00")
	require.NoError(t, err)
	env.resync(t)

	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)

	stored, ok := env.coordinator.TeamByID(team.ID)
	require.True(t, ok)
	require.Equal(t, []string{student.ID}, []string(stored.Members), "second join must not duplicate the roster entry")
	require.NotNil(t, env.profiles.profiles[student.ID].TeamID)
	require.Equal(t, team.ID, *env.profiles.profiles[student.ID].TeamID)
}

func TestJoinTeamUnknownTeam(t *testing.T) {
	env := newTestEnv(t)
	err := env.coordinator.JoinTeam(context.Background(), student, "missing")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestDeleteTeamClearsMembersBestEffort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile("student-1", models.RoleStudent, "One")
	env.addProfile("student-2", models.RoleStudent, "Two")
	env.profiles.failSetTeamFor = "student-2"

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, Principal{ID: "student-1", Role: models.RoleStudent}, team.ID))
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, Principal{ID: "student-2", Role: models.RoleStudent}, team.ID))
	env.resync(t)

	require.NoError(t, env.coordinator.DeleteTeam(ctx, instructor, team.ID), "delete proceeds even when a member clear fails")
	env.resync(t)

	_, ok := env.coordinator.TeamByID(team.ID)
	require.False(t, ok)
	require.Nil(t, env.profiles.profiles["student-1"].TeamID)
	require.NotNil(t, env.profiles.profiles["student-2"].TeamID, "failed clear leaves the stale reference behind")
}

func TestTransferMemberMovesRosterAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	from, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	to, err := env.coordinator.CreateTeam(ctx, instructor, "Beta", "", "#00f")
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, from.ID))
	env.resync(t)

	require.NoError(t, env.coordinator.TransferMember(ctx, instructor, student.ID, from.ID, to.ID))
	env.resync(t)

	fromStored, _ := env.coordinator.TeamByID(from.ID)
	toStored, _ := env.coordinator.TeamByID(to.ID)
	require.Empty(t, []string(fromStored.Members))
	require.Equal(t, []string{student.ID}, []string(toStored.Members))
	require.Equal(t, to.ID, *env.profiles.profiles[student.ID].TeamID)
}

func TestSubmitProvaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)

	prova, err := env.coordinator.CreateProva(ctx, instructor, "Quiz 1", "desc", "answer everything", 10)
	require.NoError(t, err)
	require.True(t, prova.IsActive, "new provas start active")
	env.resync(t)

	// no team yet
	_, err = env.coordinator.SubmitProva(ctx, student, prova.ID, "my answer")
	require.ErrorIs(t, err, ErrNoTeamMembership)

	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)

	submission, err := env.coordinator.SubmitProva(ctx, student, prova.ID, "  <script>alert(1)</script>my answer  ")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionID(student.ID, prova.ID), submission.ID)
	require.Equal(t, "my answer", submission.Content, "markup is stripped and whitespace trimmed")
	require.Equal(t, team.ID, submission.TeamID)
	require.Equal(t, 10, submission.MaxPoints)
	require.False(t, submission.IsGradeVisible)
	env.resync(t)

	_, err = env.coordinator.SubmitProva(ctx, student, prova.ID, "second try")
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	require.NoError(t, env.coordinator.ToggleProvaStatus(ctx, instructor, prova.ID, false))
	env.resync(t)

	other := Principal{ID: "student-2", Role: models.RoleStudent}
	env.addProfile(other.ID, models.RoleStudent, "Student Two")
	require.NoError(t, env.coordinator.JoinTeam(ctx, other, team.ID))
	env.resync(t)

	_, err = env.coordinator.SubmitProva(ctx, other, prova.ID, "late answer")
	require.ErrorIs(t, err, ErrProvaInactive)
}

func TestSubmitProvaRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	_, err := env.coordinator.SubmitProva(ctx, student, "p1", "   <b></b>  ")
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestEvaluateSubmissionEnforcesRangeAndOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	prova, err := env.coordinator.CreateProva(ctx, instructor, "Quiz 1", "", "", 10)
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)
	submission, err := env.coordinator.SubmitProva(ctx, student, prova.ID, "answer")
	require.NoError(t, err)
	env.resync(t)

	_, err = env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, 11, "", true)
	require.ErrorIs(t, err, ErrPointsOutOfRange)
	_, err = env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, -1, "", true)
	require.ErrorIs(t, err, ErrPointsOutOfRange)

	graded, err := env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, 7, "good work", true)
	require.NoError(t, err)
	require.NotNil(t, graded.Points)
	require.Equal(t, 7, *graded.Points)
	require.Equal(t, instructor.ID, graded.EvaluatedBy)
	require.True(t, graded.IsGradeVisible)
	env.resync(t)

	// re-evaluation overwrites the previous grade
	regraded, err := env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, 4, "after review", false)
	require.NoError(t, err)
	require.Equal(t, 4, *regraded.Points)
	require.False(t, regraded.IsGradeVisible)
	env.resync(t)

	stored, _ := env.coordinator.ProvaByID(prova.ID)
	sub, ok := stored.FindSubmission(submission.ID)
	require.True(t, ok)
	require.Equal(t, 4, *sub.Points)
	require.Len(t, stored.Submissions, 1)
}

func TestEvaluateUnknownSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	prova, err := env.coordinator.CreateProva(ctx, instructor, "Quiz 1", "", "", 10)
	require.NoError(t, err)
	env.resync(t)

	_, err = env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, "ghost", 5, "", true)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestResyncLazilyCreatesRankingSettings(t *testing.T) {
	env := newTestEnv(t)
	env.resync(t)

	require.Equal(t, 1, env.settings.inserts)
	settings, ok := env.coordinator.RankingSettings()
	require.True(t, ok)
	require.False(t, settings.IsVisible, "ranking starts hidden")
	require.Equal(t, "system", settings.UpdatedBy)

	// a second resync reuses the existing record
	env.resync(t)
	require.Equal(t, 1, env.settings.inserts)
}

func TestToggleRankingVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.resync(t)

	require.False(t, env.coordinator.RankingVisible())
	require.NoError(t, env.coordinator.ToggleRankingVisibility(ctx, instructor, true))
	env.resync(t)
	require.True(t, env.coordinator.RankingVisible())

	settings, _ := env.coordinator.RankingSettings()
	require.Equal(t, instructor.ID, settings.UpdatedBy)
}

func TestRankingFromMirrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	prova, err := env.coordinator.CreateProva(ctx, instructor, "Quiz 1", "", "", 10)
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)
	submission, err := env.coordinator.SubmitProva(ctx, student, prova.ID, "answer")
	require.NoError(t, err)
	env.resync(t)

	rows := env.coordinator.Ranking()
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].TotalPoints, "ungraded submission does not score")

	_, err = env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, 7, "", false)
	require.NoError(t, err)
	env.resync(t)
	require.Equal(t, 0, env.coordinator.Ranking()[0].TotalPoints, "hidden grade does not score")

	_, err = env.coordinator.EvaluateSubmission(ctx, instructor, prova.ID, submission.ID, 7, "", true)
	require.NoError(t, err)
	env.resync(t)

	rows = env.coordinator.Ranking()
	require.Equal(t, 7, rows[0].TotalPoints)
	require.Equal(t, 1, rows[0].Position)
}

func TestReviewWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")
	env.addProfile(instructor.ID, models.RoleInstructor, "Prof")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)

	review, err := env.coordinator.CreateReviewRequest(ctx, student, ReviewRequestInput{
		Title:       "Grading contest",
		Description: "We deserve more points",
		Reason:      "incorrect_evaluation",
		Evidence:    []EvidenceInput{{Type: models.EvidenceTypeLink, URL: "https://example.com/proof"}},
	})
	require.NoError(t, err)
	require.Equal(t, models.ReviewStatusPending, review.Status)
	require.Equal(t, models.ReviewPriorityMedium, review.Priority, "priority defaults to medium")
	require.Equal(t, team.ID, review.TeamID)
	require.Equal(t, "Student One", review.CreatedByName)
	require.Len(t, review.Evidence, 1)
	require.NotEmpty(t, review.Evidence[0].ID)
	env.resync(t)

	// students cannot drive the workflow
	err = env.coordinator.UpdateReviewStatus(ctx, student, review.ID, models.ReviewStatusUnderReview, nil)
	require.ErrorIs(t, err, ErrInstructorOnly)

	require.NoError(t, env.coordinator.UpdateReviewStatus(ctx, instructor, review.ID, models.ReviewStatusUnderReview, nil))
	env.resync(t)

	resolution := "points adjusted"
	require.NoError(t, env.coordinator.UpdateReviewStatus(ctx, instructor, review.ID, models.ReviewStatusResolved, &resolution))
	env.resync(t)

	stored, ok := env.coordinator.ReviewRequestByID(review.ID)
	require.True(t, ok)
	require.Equal(t, models.ReviewStatusResolved, stored.Status)
	require.Equal(t, "points adjusted", stored.Resolution)
	require.Equal(t, "Prof", stored.ReviewedByName)

	// terminal states accept no further transitions
	err = env.coordinator.UpdateReviewStatus(ctx, instructor, review.ID, models.ReviewStatusUnderReview, nil)
	require.ErrorIs(t, err, ErrReviewClosed)

	err = env.coordinator.UpdateReviewStatus(ctx, instructor, review.ID, "archived", nil)
	require.ErrorIs(t, err, ErrInvalidReviewStatus)
}

func TestReviewRequestRequiresTeam(t *testing.T) {
	env := newTestEnv(t)
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	_, err := env.coordinator.CreateReviewRequest(context.Background(), student, ReviewRequestInput{
		Title:       "Contest",
		Description: "desc",
		Reason:      "other",
	})
	require.ErrorIs(t, err, ErrNoTeamMembership)
}

func TestReviewDeleteIsInstructorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)

	review, err := env.coordinator.CreateReviewRequest(ctx, student, ReviewRequestInput{Title: "Contest", Description: "d", Reason: "other"})
	require.NoError(t, err)
	env.resync(t)

	require.ErrorIs(t, env.coordinator.DeleteReviewRequest(ctx, student, review.ID), ErrInstructorOnly)
	require.NoError(t, env.coordinator.DeleteReviewRequest(ctx, instructor, review.ID))
	env.resync(t)

	_, ok := env.coordinator.ReviewRequestByID(review.ID)
	require.False(t, ok)
}

func TestTeamMembersResolvesProfiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(student.ID, models.RoleStudent, "Student One")

	team, err := env.coordinator.CreateTeam(ctx, instructor, "Alpha", "", "#f00")
	require.NoError(t, err)
	env.resync(t)
	require.NoError(t, env.coordinator.JoinTeam(ctx, student, team.ID))
	env.resync(t)

	members, err := env.coordinator.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, student.ID, members[0].ID)
}
