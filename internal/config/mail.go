package config

import (
	"fmt"
	"net/mail"
	"os"
)

// MailConfig selects how verification and reset emails are sent. With no
// Gmail files configured, messages are logged instead of delivered.
type MailConfig struct {
	From            string
	CredentialsFile string // OAuth client JSON for the sending account
	TokenFile       string // stored oauth2.Token JSON for the sending account
}

// LoadMailConfig reads MAIL_FROM, GMAIL_CREDENTIALS_FILE and GMAIL_TOKEN_FILE.
func LoadMailConfig() (*MailConfig, error) {
	c := &MailConfig{
		From:            os.Getenv("MAIL_FROM"),
		CredentialsFile: os.Getenv("GMAIL_CREDENTIALS_FILE"),
		TokenFile:       os.Getenv("GMAIL_TOKEN_FILE"),
	}
	if c.From == "" {
		c.From = "Career Compass <no-reply@localhost>"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// UseGmail reports whether Gmail delivery is configured.
func (c *MailConfig) UseGmail() bool {
	return c.CredentialsFile != "" && c.TokenFile != ""
}

// Validate checks the sender address and that Gmail files come in pairs.
func (c *MailConfig) Validate() error {
	if _, err := mail.ParseAddress(c.From); err != nil {
		return fmt.Errorf("invalid MAIL_FROM %q: %v", c.From, err)
	}
	if (c.CredentialsFile == "") != (c.TokenFile == "") {
		return fmt.Errorf("GMAIL_CREDENTIALS_FILE and GMAIL_TOKEN_FILE must be set together")
	}
	for _, path := range []string{c.CredentialsFile, c.TokenFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: mail file not found: %s", path)
		}
	}
	return nil
}
