package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"snapsync/internal/config"
	"snapsync/internal/google"
	"snapsync/internal/teamsnap"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize snapsync against TeamSnap or Google.",
		Subcommands: []*cli.Command{
			{
				Name:  "teamsnap",
				Usage: "Run the TeamSnap OAuth flow and print an access token.",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Usage: "Store the access token in the config file."},
				},
				Action: authTeamSnapAction,
			},
			{
				Name:   "google",
				Usage:  "Authenticate with a Google account to get an API token.",
				Action: authGoogleAction,
			},
		},
	}
}

func authTeamSnapAction(c *cli.Context) error {
	logger := loggerFor(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTeamSnapAuth(); err != nil {
		return err
	}

	oauthConfig := teamsnap.OAuthConfig(cfg.TeamSnap.ClientID, cfg.TeamSnap.ClientSecret, cfg.TeamSnap.CallbackURL)
	fmt.Printf("\nAuthorization URL -> %s\n\n", oauthConfig.AuthCodeURL(uuid.NewString()))

	code, err := prompt("Go to the URL in your browser, authorize, and enter the authorization code: ")
	if err != nil {
		return err
	}

	token, err := teamsnap.ExchangeCode(c.Context, oauthConfig, code)
	if err != nil {
		return err
	}

	if c.Bool("write") {
		if err := config.SetValues(cfg.Path, "teamsnap", map[string]string{"access_token": token.AccessToken}); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
		logger.Info("Saved TeamSnap access token.", "config", cfg.Path)
		return nil
	}

	fmt.Printf("\nSuccess! Please add the following to the access_token setting in your config file: %s\n", token.AccessToken)
	return nil
}

func authGoogleAction(c *cli.Context) error {
	logger := loggerFor(c)
	logger.Info("Starting Google authentication flow.")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	oauthConfig, err := google.GetOAuthConfigForAuthFlow(cfg.Google.ClientID, cfg.Google.ClientSecret)
	if err != nil {
		return fmt.Errorf("failed to get google oauth config: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)

	authCode, err := prompt("Enter Authorization Code: ")
	if err != nil {
		return err
	}

	token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
	if err != nil {
		return fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	if err := google.SaveToken(cfg.Google.TokenFile, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	logger.Info("Successfully authenticated and saved token.", "file", cfg.Google.TokenFile)
	return nil
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
