package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/store"
)

// ErrNotAuthenticated indicates a command was issued without a principal.
var ErrNotAuthenticated = errors.New("authentication required")

// ErrInstructorOnly indicates the principal lacks instructor authority.
var ErrInstructorOnly = errors.New("instructor role required")

// Principal identifies the authenticated caller of a command.
type Principal struct {
	ID   string
	Role string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// IsInstructor reports whether the principal may run instructor commands.
func (p Principal) IsInstructor() bool {
	return p.Role == models.RoleInstructor || p.Role == models.RoleAdmin
}

// TeamStore is the slice of the entity store the coordinator needs for teams.
type TeamStore interface {
	All(ctx context.Context) ([]models.Team, error)
	Insert(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, id, name, description, color string) error
	SetMembers(ctx context.Context, id string, members []string) error
	Delete(ctx context.Context, id string) error
	Subscribe() (<-chan struct{}, func())
}

// ProvaStore is the slice of the entity store the coordinator needs for provas.
type ProvaStore interface {
	All(ctx context.Context) ([]models.Prova, error)
	Insert(ctx context.Context, prova *models.Prova) error
	Update(ctx context.Context, id, title, description, instructions string, maxPoints int) error
	SetActive(ctx context.Context, id string, isActive bool) error
	SetSubmissions(ctx context.Context, id string, submissions []models.Submission) error
	Delete(ctx context.Context, id string) error
	Subscribe() (<-chan struct{}, func())
}

// SettingsStore is the slice of the entity store holding ranking settings.
type SettingsStore interface {
	All(ctx context.Context) ([]models.RankingSettings, error)
	Insert(ctx context.Context, settings *models.RankingSettings) error
	Update(ctx context.Context, id string, isVisible bool, updatedBy string, at time.Time) error
	Subscribe() (<-chan struct{}, func())
}

// ReviewStore is the slice of the entity store holding review requests.
type ReviewStore interface {
	All(ctx context.Context) ([]models.ReviewRequest, error)
	Insert(ctx context.Context, review *models.ReviewRequest) error
	UpdateStatus(ctx context.Context, id string, update store.ReviewStatusUpdate) error
	Delete(ctx context.Context, id string) error
	Subscribe() (<-chan struct{}, func())
}

// ProfileStore is the slice of the profile collection the coordinator needs
// for membership bookkeeping.
type ProfileStore interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
	GetMany(ctx context.Context, ids []string) ([]models.UserProfile, error)
	SetTeam(ctx context.Context, id string, teamID *string) error
}

// Stores groups the entity store slices injected into the coordinator.
type Stores struct {
	Teams    TeamStore
	Provas   ProvaStore
	Settings SettingsStore
	Reviews  ReviewStore
	Profiles ProfileStore
}

// Coordinator owns the live mirrors of the four game collections and exposes
// every mutation as a command. Mirrors only ever reflect committed store
// content: commands write to the store and the mirrors catch up through the
// change subscriptions, never through local speculation.
type Coordinator struct {
	stores    Stores
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu       sync.RWMutex
	teams    []models.Team
	provas   []models.Prova
	settings *models.RankingSettings
	reviews  []models.ReviewRequest

	state *stateBroker
}

// New constructs a coordinator over the given stores.
func New(stores Stores, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		stores:    stores,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "game_coordinator").Logger(),
		tracer:    otel.Tracer("github.com/gincana-dev/gincana-go-api/internal/game"),
		now:       time.Now,
		state:     newStateBroker(),
	}
}

// Start performs the initial mirror load and launches one subscription loop
// per collection. The loops stop when ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.Resync(ctx); err != nil {
		return err
	}

	go c.mirrorLoop(ctx, "teams", c.stores.Teams.Subscribe, c.syncTeams)
	go c.mirrorLoop(ctx, "provas", c.stores.Provas.Subscribe, c.syncProvas)
	go c.mirrorLoop(ctx, "ranking_settings", c.stores.Settings.Subscribe, c.syncSettings)
	go c.mirrorLoop(ctx, "review_requests", c.stores.Reviews.Subscribe, c.syncReviews)

	return nil
}

// Resync re-reads all four collections into the mirrors.
func (c *Coordinator) Resync(ctx context.Context) error {
	if err := c.syncTeams(ctx); err != nil {
		return err
	}
	if err := c.syncProvas(ctx); err != nil {
		return err
	}
	if err := c.syncSettings(ctx); err != nil {
		return err
	}
	return c.syncReviews(ctx)
}

func (c *Coordinator) mirrorLoop(ctx context.Context, name string, subscribe func() (<-chan struct{}, func()), sync func(context.Context) error) {
	changes, cancel := subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			if err := sync(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error().Err(err).Str("collection", name).Msg("failed to refresh mirror")
			}
		}
	}
}

func (c *Coordinator) syncTeams(ctx context.Context) error {
	teams, err := c.stores.Teams.All(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.teams = teams
	c.mu.Unlock()

	c.state.notify()
	return nil
}

func (c *Coordinator) syncProvas(ctx context.Context) error {
	provas, err := c.stores.Provas.All(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.provas = provas
	c.mu.Unlock()

	c.state.notify()
	return nil
}

// syncSettings mirrors the ranking settings singleton, lazily creating it
// with visibility off the first time the collection is observed empty.
func (c *Coordinator) syncSettings(ctx context.Context) error {
	settings, err := c.stores.Settings.All(ctx)
	if err != nil {
		return err
	}

	if len(settings) == 0 {
		defaults := models.RankingSettings{
			IsVisible:   false,
			LastUpdated: c.now().UTC(),
			UpdatedBy:   "system",
		}
		if err := c.stores.Settings.Insert(ctx, &defaults); err != nil {
			return err
		}
		settings = []models.RankingSettings{defaults}
	}

	current := settings[0]

	c.mu.Lock()
	c.settings = &current
	c.mu.Unlock()

	c.state.notify()
	return nil
}

func (c *Coordinator) syncReviews(ctx context.Context) error {
	reviews, err := c.stores.Reviews.All(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.reviews = reviews
	c.mu.Unlock()

	c.state.notify()
	return nil
}

// Teams returns the mirrored teams.
func (c *Coordinator) Teams() []models.Team {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Team(nil), c.teams...)
}

// TeamByID returns the mirrored team with the given id.
func (c *Coordinator) TeamByID(id string) (models.Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.teamByIDLocked(id)
}

func (c *Coordinator) teamByIDLocked(id string) (models.Team, bool) {
	for _, team := range c.teams {
		if team.ID == id {
			return team, true
		}
	}
	return models.Team{}, false
}

// Provas returns the mirrored provas, newest first.
func (c *Coordinator) Provas() []models.Prova {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Prova(nil), c.provas...)
}

// ActiveProvas returns only the provas open for submission.
func (c *Coordinator) ActiveProvas() []models.Prova {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := make([]models.Prova, 0, len(c.provas))
	for _, prova := range c.provas {
		if prova.IsActive {
			active = append(active, prova)
		}
	}
	return active
}

// ProvaByID returns the mirrored prova with the given id.
func (c *Coordinator) ProvaByID(id string) (models.Prova, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provaByIDLocked(id)
}

func (c *Coordinator) provaByIDLocked(id string) (models.Prova, bool) {
	for _, prova := range c.provas {
		if prova.ID == id {
			return prova, true
		}
	}
	return models.Prova{}, false
}

// RankingSettings returns the mirrored singleton, if it has been loaded.
func (c *Coordinator) RankingSettings() (models.RankingSettings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.settings == nil {
		return models.RankingSettings{}, false
	}
	return *c.settings, true
}

// RankingVisible reports whether students may currently see the ranking.
func (c *Coordinator) RankingVisible() bool {
	settings, ok := c.RankingSettings()
	return ok && settings.IsVisible
}

// ReviewRequests returns the mirrored review requests, newest first.
func (c *Coordinator) ReviewRequests() []models.ReviewRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.ReviewRequest(nil), c.reviews...)
}

// ReviewRequestsForTeam returns the review requests filed by a team.
func (c *Coordinator) ReviewRequestsForTeam(teamID string) []models.ReviewRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.ReviewRequest, 0)
	for _, review := range c.reviews {
		if review.TeamID == teamID {
			out = append(out, review)
		}
	}
	return out
}

// ReviewRequestByID returns the mirrored review request with the given id.
func (c *Coordinator) ReviewRequestByID(id string) (models.ReviewRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reviewByIDLocked(id)
}

func (c *Coordinator) reviewByIDLocked(id string) (models.ReviewRequest, bool) {
	for _, review := range c.reviews {
		if review.ID == id {
			return review, true
		}
	}
	return models.ReviewRequest{}, false
}

// Ranking projects the current ranking from the mirrored teams and provas.
func (c *Coordinator) Ranking() []models.TeamRanking {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ProjectRanking(c.teams, c.provas)
}

// SubmissionStats summarises grading progress for one prova.
type SubmissionStats struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Pending   int `json:"pending"`
}

// SubmissionStatsFor counts submissions and grades for a prova.
func (c *Coordinator) SubmissionStatsFor(provaID string) (SubmissionStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prova, ok := c.provaByIDLocked(provaID)
	if !ok {
		return SubmissionStats{}, false
	}

	stats := SubmissionStats{Total: len(prova.Submissions)}
	for _, sub := range prova.Submissions {
		if sub.IsEvaluated() {
			stats.Evaluated++
		}
	}
	stats.Pending = stats.Total - stats.Evaluated
	return stats, true
}

// SubscribeState returns a signal channel that fires whenever any mirror
// advances. Used by the live state stream.
func (c *Coordinator) SubscribeState() (<-chan struct{}, func()) {
	return c.state.subscribe()
}

// stateBroker fans a single "state changed" signal out to stream subscribers.
type stateBroker struct {
	mu   sync.RWMutex
	subs map[chan struct{}]struct{}
}

func newStateBroker() *stateBroker {
	return &stateBroker{subs: make(map[chan struct{}]struct{})}
}

func (b *stateBroker) subscribe() (<-chan struct{}, func()) {
	channel := make(chan struct{}, 1)

	b.mu.Lock()
	b.subs[channel] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, channel)
		b.mu.Unlock()
	}

	return channel, cancel
}

func (b *stateBroker) notify() {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subs {
		select {
		case channel <- struct{}{}:
		default:
		}
	}
}
