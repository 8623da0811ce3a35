// Package notification fans security events out to the event stream and to
// the affected user's registered devices.
package notification

import (
	"context"
	"log"
	"sync"
	"time"

	authrepo "questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fcm"
)

// Pusher sends push notifications and reports rejected tokens.
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// deliveryTimeout bounds one background fan-out.
const deliveryTimeout = 30 * time.Second

type Service struct {
	publisher  events.Publisher
	deviceRepo authrepo.DeviceTokenRepository
	pusher     Pusher
	now        func() time.Time
	inflight   sync.WaitGroup
}

// NewService wires the notifier. A nil pusher disables push alerts; a nil
// publisher disables the event stream.
func NewService(publisher events.Publisher, deviceRepo authrepo.DeviceTokenRepository, pusher Pusher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		publisher:  publisher,
		deviceRepo: deviceRepo,
		pusher:     pusher,
		now:        time.Now,
	}
}

// Notify returns immediately and delivers in the background: it publishes
// the event and, for events the user must know about, pushes an alert to
// their devices. Failures are logged, never returned.
func (s *Service) Notify(ctx context.Context, kind events.Kind, userID string, attrs map[string]string) {
	event := events.Event{Kind: kind, UserID: userID, OccurredAt: s.now(), Attributes: attrs}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		s.deliver(bg, event)
	}()
}

// Wait blocks until every background delivery started so far has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) deliver(ctx context.Context, event events.Event) {
	kind, userID := event.Kind, event.UserID
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[Notification] Failed to publish %s for user %s: %v", kind, userID, err)
	}

	alert, ok := alertFor(kind)
	if !ok || s.pusher == nil || s.deviceRepo == nil {
		return
	}

	devices, err := s.deviceRepo.GetTokensByUserID(ctx, userID)
	if err != nil {
		log.Printf("[Notification] Error getting device tokens for user %s: %v", userID, err)
		return
	}
	if len(devices) == 0 {
		return
	}
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}

	alert.Data = map[string]string{"type": string(kind), "user_id": userID}
	failed, err := s.pusher.SendToDevices(ctx, tokens, alert)
	if err != nil {
		log.Printf("[Notification] Error sending %s alert to user %s: %v", kind, userID, err)
		return
	}
	if len(failed) > 0 {
		if err := s.deviceRepo.DeleteTokens(ctx, failed); err != nil {
			log.Printf("[Notification] Error removing %d stale device tokens: %v", len(failed), err)
		}
	}
}

func alertFor(kind events.Kind) (fcm.NotificationData, bool) {
	switch kind {
	case events.KindPasswordReset:
		return fcm.NotificationData{
			Title: "Your password was changed",
			Body:  "If this wasn't you, reset your password now and contact support.",
		}, true
	case events.KindRefreshTokenReuse:
		return fcm.NotificationData{
			Title: "Suspicious sign-in activity",
			Body:  "A stale session token was used. You have been signed out everywhere.",
		}, true
	case events.KindOAuthAccountLink:
		return fcm.NotificationData{
			Title: "Google account linked",
			Body:  "Your account can now sign in with Google.",
		}, true
	}
	return fcm.NotificationData{}, false
}
