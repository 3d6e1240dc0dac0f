package config

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig holds Google sign-in credentials. Google sign-in is disabled
// when ClientID is empty.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LoadOAuthConfig reads GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
// GOOGLE_REDIRECT_URL. All three are required once GOOGLE_CLIENT_ID is set.
func LoadOAuthConfig() (*OAuthConfig, error) {
	c := &OAuthConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Enabled reports whether Google sign-in is configured.
func (c *OAuthConfig) Enabled() bool {
	return c != nil && c.ClientID != ""
}

// Validate requires the secret and redirect URL when a client ID is set.
func (c *OAuthConfig) Validate() error {
	if c.ClientID == "" {
		return nil
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
	}
	return nil
}

// OAuth2 returns the oauth2 configuration for the Google endpoint with the
// openid, email and profile scopes.
func (c *OAuthConfig) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}
