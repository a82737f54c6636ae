package notification

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/SherClockHolmes/webpush-go"
)

// Mailer enqueues one outbound email. Fire and forget: no delivery
// confirmation is required by callers.
type Mailer interface {
	Enqueue(recipient, heading, body string) error
}

// PushSender delivers one push notification to a device token. Best-effort;
// failures are logged by the caller, never surfaced to users.
type PushSender interface {
	Send(deviceToken, title, body, channelType, deepLink string) error
}

// LogMailer is the mail boundary stub: actual SMTP relay lives outside this
// service, so enqueueing is recorded in the log.
type LogMailer struct {
	From   string
	Logger *log.Logger
}

func (m *LogMailer) Enqueue(recipient, heading, body string) error {
	logger := m.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("mail enqueued from=%s to=%s subject=%q", m.From, recipient, heading)
	return nil
}

// WebPushSender sends push notifications over web push. A device token is a
// serialized webpush subscription (endpoint plus keys) stored on the user or
// agent record.
type WebPushSender struct {
	Options *webpush.Options
}

func (s *WebPushSender) Send(deviceToken, title, body, channelType, deepLink string) error {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(deviceToken), &sub); err != nil {
		return fmt.Errorf("bad device token: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"title":     title,
		"body":      body,
		"channel":   channelType,
		"deep_link": deepLink,
	})
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotification(payload, &sub, s.Options)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 410 {
		return fmt.Errorf("subscription expired (410)")
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
