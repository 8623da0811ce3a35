// Package fcm delivers account security alerts through Firebase Cloud
// Messaging.
package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Client struct {
	messaging *messaging.Client
}

// NewClient builds a messaging client. An empty credentialsFile falls back to
// application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}

	log.Println("[FCM] Client initialized")
	return &Client{messaging: mc}, nil
}

// NotificationData is one alert shown to the user.
type NotificationData struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendToDevices pushes the alert to every token at high priority. It returns
// the tokens FCM reports as unregistered or malformed; other per-token
// failures are logged and the token is kept.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, alert NotificationData) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: alert.Title, Body: alert.Body},
		Data:         alert.Data,
		Android:      &messaging.AndroidConfig{Priority: "high"},
		APNS:         &messaging.APNSConfig{Headers: map[string]string{"apns-priority": "10"}},
		Webpush: &messaging.WebpushConfig{
			Headers:      map[string]string{"Urgency": "high"},
			Notification: &messaging.WebpushNotification{Title: alert.Title, Body: alert.Body},
		},
	}

	resp, err := c.messaging.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast: %w", err)
	}
	log.Printf("[FCM] Alert %q sent: %d ok, %d failed", alert.Title, resp.SuccessCount, resp.FailureCount)

	var dead []string
	for i, r := range resp.Responses {
		if r.Success {
			continue
		}
		if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
			dead = append(dead, tokens[i])
			continue
		}
		log.Printf("[FCM] Delivery to %s failed: %v", redact(tokens[i]), r.Error)
	}
	return dead, nil
}

func redact(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
