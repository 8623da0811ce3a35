package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
	authrepo "questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/database/dbtest"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fcm"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type fakePusher struct {
	sent   [][]string
	titles []string
	reject []string
}

func (p *fakePusher) SendToDevices(_ context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
	p.sent = append(p.sent, tokens)
	p.titles = append(p.titles, n.Title)
	return p.reject, nil
}

func TestNotifyPublishesAndPushes(t *testing.T) {
	ctx := context.Background()
	devices := authrepo.NewDeviceTokenRepository(dbtest.Open(t, &authdomain.DeviceToken{}))
	_ = devices.SaveToken(ctx, "u1", "tok-good", "firefox")
	_ = devices.SaveToken(ctx, "u1", "tok-stale", "chrome")

	pub := &recordingPublisher{}
	push := &fakePusher{reject: []string{"tok-stale"}}
	svc := NewService(pub, devices, push)

	svc.Notify(ctx, events.KindPasswordReset, "u1", nil)
	svc.Wait()

	if len(pub.events) != 1 || pub.events[0].Kind != events.KindPasswordReset || pub.events[0].UserID != "u1" {
		t.Fatalf("events = %+v", pub.events)
	}
	if len(push.sent) != 1 || len(push.sent[0]) != 2 {
		t.Fatalf("pushes = %v", push.sent)
	}
	remaining, _ := devices.GetTokensByUserID(ctx, "u1")
	if len(remaining) != 1 || remaining[0].Token != "tok-good" {
		t.Fatalf("remaining tokens = %+v", remaining)
	}
}

func TestNotifySkipsPushForInformationalEvents(t *testing.T) {
	ctx := context.Background()
	devices := authrepo.NewDeviceTokenRepository(dbtest.Open(t, &authdomain.DeviceToken{}))
	_ = devices.SaveToken(ctx, "u1", "tok", "firefox")
	push := &fakePusher{}

	svc := NewService(nil, devices, push)
	svc.Notify(ctx, events.KindUserRegistered, "u1", nil)
	svc.Wait()
	if len(push.sent) != 0 {
		t.Fatal("expected no push for registration")
	}
}

func TestNotifySurvivesPublisherFailure(t *testing.T) {
	ctx := context.Background()
	devices := authrepo.NewDeviceTokenRepository(dbtest.Open(t, &authdomain.DeviceToken{}))
	_ = devices.SaveToken(ctx, "u1", "tok", "firefox")
	push := &fakePusher{}

	svc := NewService(&recordingPublisher{err: errors.New("unavailable")}, devices, push)
	svc.Notify(ctx, events.KindRefreshTokenReuse, "u1", nil)
	svc.Wait()
	if len(push.sent) != 1 {
		t.Fatal("expected push despite publish failure")
	}
}

func TestNotifyWithoutPusher(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(pub, nil, nil)
	svc.Notify(context.Background(), events.KindPasswordReset, "u1", nil)
	svc.Wait()
	if len(pub.events) != 1 {
		t.Fatal("expected event published")
	}
}

type blockingPublisher struct {
	release chan struct{}
	ctxErr  chan error
}

func (p *blockingPublisher) Publish(ctx context.Context, _ events.Event) error {
	<-p.release
	p.ctxErr <- ctx.Err()
	return nil
}

func TestNotifyDoesNotBlockCaller(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{}), ctxErr: make(chan error, 1)}
	svc := NewService(pub, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		svc.Notify(ctx, events.KindPasswordReset, "u1", nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on the publisher")
	}

	// The request finishing must not cancel delivery.
	cancel()
	close(pub.release)
	svc.Wait()
	if err := <-pub.ctxErr; err != nil {
		t.Fatalf("delivery context err = %v, want nil", err)
	}
}
