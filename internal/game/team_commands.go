package game

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

// ErrTeamNotFound indicates the referenced team is not in the mirror.
var ErrTeamNotFound = errors.New("team not found")

// CreateTeam writes a new team with an empty roster. Duplicate names and
// colors are permitted.
func (c *Coordinator) CreateTeam(ctx context.Context, p Principal, name, description, color string) (models.Team, error) {
	if !p.Authenticated() {
		return models.Team{}, ErrNotAuthenticated
	}

	team := models.Team{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       color,
		Members:     datatypes.NewJSONSlice([]string{}),
		TotalPoints: 0,
		CreatedAt:   c.now().UTC(),
		CreatedBy:   p.ID,
	}

	if err := c.stores.Teams.Insert(ctx, &team); err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// UpdateTeam overwrites the three mutable display fields. The roster is not
// touched.
func (c *Coordinator) UpdateTeam(ctx context.Context, p Principal, teamID, name, description, color string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}
	if _, ok := c.TeamByID(teamID); !ok {
		return ErrTeamNotFound
	}

	return c.stores.Teams.Update(ctx, teamID, strings.TrimSpace(name), strings.TrimSpace(description), color)
}

// DeleteTeam clears the team reference on every member's profile, then
// deletes the team record. The per-member clears are best-effort: a failed
// clear is logged and skipped, and the delete still proceeds, which can leave
// a profile pointing at a team that no longer exists.
func (c *Coordinator) DeleteTeam(ctx context.Context, p Principal, teamID string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	team, ok := c.TeamByID(teamID)
	if !ok {
		return ErrTeamNotFound
	}

	for _, memberID := range team.Members {
		if err := c.stores.Profiles.SetTeam(ctx, memberID, nil); err != nil {
			c.logger.Warn().Err(err).
				Str("team_id", teamID).
				Str("member_id", memberID).
				Msg("failed to clear team reference on member profile")
		}
	}

	return c.stores.Teams.Delete(ctx, teamID)
}

// TransferMember moves a member between rosters and repoints their profile.
// The three writes are independent; there is no rollback if one of them
// fails partway.
func (c *Coordinator) TransferMember(ctx context.Context, p Principal, memberID, fromTeamID, toTeamID string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	if fromTeam, ok := c.TeamByID(fromTeamID); ok {
		if err := c.stores.Teams.SetMembers(ctx, fromTeamID, fromTeam.WithoutMember(memberID)); err != nil {
			return err
		}
	}

	if toTeam, ok := c.TeamByID(toTeamID); ok {
		if !toTeam.HasMember(memberID) {
			members := append(append([]string(nil), toTeam.Members...), memberID)
			if err := c.stores.Teams.SetMembers(ctx, toTeamID, members); err != nil {
				return err
			}
		}
	}

	return c.stores.Profiles.SetTeam(ctx, memberID, &toTeamID)
}

// JoinTeam adds the principal to the roster and points their profile at the
// team. Joining a team the principal is already on is a silent no-op.
func (c *Coordinator) JoinTeam(ctx context.Context, p Principal, teamID string) error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	team, ok := c.TeamByID(teamID)
	if !ok {
		return ErrTeamNotFound
	}

	if team.HasMember(p.ID) {
		return nil
	}

	members := append(append([]string(nil), team.Members...), p.ID)
	if err := c.stores.Teams.SetMembers(ctx, teamID, members); err != nil {
		return err
	}

	return c.stores.Profiles.SetTeam(ctx, p.ID, &teamID)
}

// TeamMembers resolves the member profiles for a team roster.
func (c *Coordinator) TeamMembers(ctx context.Context, teamID string) ([]models.UserProfile, error) {
	team, ok := c.TeamByID(teamID)
	if !ok {
		return nil, ErrTeamNotFound
	}

	if len(team.Members) == 0 {
		return []models.UserProfile{}, nil
	}

	profiles, err := c.stores.Profiles.GetMany(ctx, team.Members)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
