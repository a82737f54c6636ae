package model

import "time"

// Outbox channels.
const (
	OutboxChannelEmail = "email"
	OutboxChannelPush  = "push"
)

// OutboxEvent is a notification written durably inside the same transaction as
// the booking write that caused it. A worker pool delivers unsent rows
// best-effort; delivery failures bump Attempts and are retried by the sweeper,
// never rolled back into the booking write path.
type OutboxEvent struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Channel     string `gorm:"size:16;not null;index"`
	Recipient   string `gorm:"size:256"`  // email address for email channel
	DeviceToken string `gorm:"size:1024"` // push channel
	Heading     string `gorm:"size:256;not null"`
	Body        string `gorm:"size:1024;not null"`
	DeepLink    string `gorm:"size:512"`
	Sent        bool   `gorm:"not null;default:false;index"`
	Attempts    int    `gorm:"not null;default:0"`
	LastError   string `gorm:"size:512"`
	CreatedAt   time.Time
	SentAt      *time.Time
}
