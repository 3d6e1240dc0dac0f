package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends through the Gmail API as the authorized account.
type GmailMailer struct {
	from    string
	service *gmail.Service
}

// NewGmailMailer builds a mailer from an OAuth client credentials file and a
// previously stored token for the sending account.
func NewGmailMailer(ctx context.Context, from, credentialsFile, tokenFile string) (*GmailMailer, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	return &GmailMailer{from: from, service: service}, nil
}

// NewGmailMailerWithService wraps an existing service.
func NewGmailMailerWithService(from string, service *gmail.Service) *GmailMailer {
	return &GmailMailer{from: from, service: service}
}

// Send delivers msg.
func (m *GmailMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.from
	}
	raw := base64.URLEncoding.EncodeToString(RFC822(msg))
	if _, err := m.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
