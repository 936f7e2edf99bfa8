package teamsnap

import (
	"context"
	"fmt"
)

// Team is a team the authenticated user belongs to.
type Team struct {
	ID   string
	Name string
}

// Identity is what the API knows about the owner of the access token.
type Identity struct {
	UserID string
	Teams  []Team
}

// Discover returns the authenticated user's ID and teams.
func (c *Client) Discover(ctx context.Context) (Identity, error) {
	meHref, err := c.link(ctx, "me")
	if err != nil {
		return Identity{}, err
	}

	me, err := c.hm.Fetch(ctx, meHref, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	user, err := single(me, "user")
	if err != nil {
		return Identity{}, err
	}
	userID, err := user.String("id")
	if err != nil {
		return Identity{}, fmt.Errorf("user: %w", err)
	}
	c.logger.Info("Retrieved user ID", "userID", userID)

	teamsHref, err := user.Link("teams")
	if err != nil {
		return Identity{}, err
	}
	coll, err := c.hm.Fetch(ctx, teamsHref, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch teams: %w", err)
	}

	id := Identity{UserID: userID}
	for _, item := range coll.Items {
		teamID, err := item.String("id")
		if err != nil {
			return Identity{}, fmt.Errorf("team: %w", err)
		}
		name, _ := item.String("name")
		id.Teams = append(id.Teams, Team{ID: teamID, Name: name})
	}
	return id, nil
}

// SingleTeam returns the only team, or an AmbiguousResultError when the user
// belongs to zero or several teams.
func (id Identity) SingleTeam() (Team, error) {
	if len(id.Teams) != 1 {
		return Team{}, &AmbiguousResultError{Resource: "team", Count: len(id.Teams)}
	}
	return id.Teams[0], nil
}
