package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender sends mail through the Gmail API as the account that granted
// the stored refresh token.
type GmailSender struct {
	config       *oauth2.Config
	refreshToken string
}

func NewGmailSender(clientID, clientSecret, refreshToken string) *GmailSender {
	return &GmailSender{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		},
		refreshToken: refreshToken,
	}
}

func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	raw, err := Compose(msg, time.Now())
	if err != nil {
		return err
	}

	tokenSource := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return fmt.Errorf("unable to create Gmail service: %w", err)
	}

	_, err = srv.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	log.Printf("[Mailer] Sent %q to %s", msg.Subject, msg.To)
	return nil
}
