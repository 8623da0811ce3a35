// Package events publishes security events for downstream consumers
// (audit pipelines, alerting).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type Kind string

const (
	KindUserRegistered    Kind = "user_registered"
	KindPasswordReset     Kind = "password_reset"
	KindRefreshTokenReuse Kind = "refresh_token_reuse"
	KindOAuthAccountLink  Kind = "oauth_account_linked"
)

type Event struct {
	Kind       Kind              `json:"kind"`
	UserID     string            `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// PubSubPublisher publishes events as JSON messages on a Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("check topic %s: %w", topicName, err)
	}
	if !exists {
		if topic, err = client.CreateTopic(ctx, topicName); err != nil {
			client.Close()
			return nil, fmt.Errorf("create topic %s: %w", topicName, err)
		}
		log.Printf("[PubSub] Created topic %s", topicName)
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"kind":    string(event.Kind),
			"user_id": event.UserID,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}
	log.Printf("[PubSub] Published %s for user %s (message %s)", event.Kind, event.UserID, id)
	return nil
}

// Close flushes pending messages and releases the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
