package teamsnap

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TeamSnap OAuth endpoints. The authorization code expires after ten minutes.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://auth.teamsnap.com/oauth/authorize",
	TokenURL:  "https://auth.teamsnap.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// OAuthConfig returns the three-legged flow configuration for a registered
// TeamSnap application. Only read access is requested.
func OAuthConfig(clientID, clientSecret, callbackURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"read"},
		Endpoint:     Endpoint,
	}
}

// ExchangeCode trades an authorization code for an access token.
func ExchangeCode(ctx context.Context, config *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}
