package main

import (
	"fmt"

	"snapsync/internal/config"
	"snapsync/internal/google"
	"snapsync/internal/hypermedia"
	"snapsync/internal/teamsnap"

	"github.com/urfave/cli/v2"
)

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Find your TeamSnap user and team IDs.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "team", Usage: "Team ID to store when you belong to several teams."},
			&cli.BoolFlag{Name: "write", Usage: "Store user_id and team_id in the config file."},
		},
		Action: discoverAction,
	}
}

func discoverAction(c *cli.Context) error {
	logger := loggerFor(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDiscover(); err != nil {
		return err
	}

	hm := hypermedia.NewBearerClient(c.Context, cfg.TeamSnap.AccessToken, cfg.TeamSnap.Timeout, logger)
	identity, err := teamsnap.NewClient(hm, cfg.TeamSnap.APIRoot, logger).Discover(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("user_id = %s\n", identity.UserID)
	for _, team := range identity.Teams {
		fmt.Printf("team_id = %s  (%s)\n", team.ID, team.Name)
	}

	if !c.Bool("write") {
		return nil
	}
	teamID, err := pickTeam(identity, c.String("team"))
	if err != nil {
		return err
	}
	values := map[string]string{"user_id": identity.UserID, "team_id": teamID}
	if err := config.SetValues(cfg.Path, "teamsnap", values); err != nil {
		return fmt.Errorf("failed to save ids: %w", err)
	}
	logger.Info("Saved TeamSnap ids.", "config", cfg.Path, "userID", identity.UserID, "teamID", teamID)
	return nil
}

// pickTeam returns the requested team, or the only team when none is requested.
func pickTeam(identity teamsnap.Identity, requested string) (string, error) {
	if requested == "" {
		team, err := identity.SingleTeam()
		if err != nil {
			return "", fmt.Errorf("%w; pass --team to choose one", err)
		}
		return team.ID, nil
	}
	for _, team := range identity.Teams {
		if team.ID == requested {
			return team.ID, nil
		}
	}
	return "", fmt.Errorf("you are not a member of team %s", requested)
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List the Google calendars the saved token can see.",
		Action: func(c *cli.Context) error {
			logger := loggerFor(c)

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			client, err := google.NewClient(c.Context, logger, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenFile, cfg.Google.CalendarID, cfg.Sync.HorizonDays)
			if err != nil {
				return err
			}
			calendars, err := client.ListCalendars(c.Context)
			if err != nil {
				return err
			}
			for id, name := range calendars {
				fmt.Printf("calendar_id = %s  (%s)\n", id, name)
			}
			return nil
		},
	}
}
