package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// GoogleProvider issues Google OAuth2 access tokens from a long-lived refresh token.
// Obtaining the refresh token (the consent flow) happens outside this service.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a new Google OAuth provider scoped to calendar events
func NewGoogleProvider(clientID, clientSecret string) *GoogleProvider {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}

	return &GoogleProvider{
		config: config,
	}
}

// TokenSource returns a token source that refreshes access tokens as they expire
func (g *GoogleProvider) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return g.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// RefreshToken exchanges the refresh token for a fresh access token.
// Used at startup to fail fast on revoked credentials.
func (g *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	newToken, err := g.TokenSource(ctx, refreshToken).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return newToken, nil
}
