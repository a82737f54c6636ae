package model

import "time"

// Agent represents a field operative (driver/RSA) who can be assigned to bookings.
type Agent struct {
	ID            string `gorm:"primaryKey;size:32"`
	Name          string `gorm:"size:128;not null"`
	Email         string `gorm:"size:256"`
	Phone         string `gorm:"size:32"`
	ServiceType   string `gorm:"size:64;index"`
	Status        int    `gorm:"not null;default:1"`
	// RunningOrders counts currently assigned non-terminal bookings.
	// Mutated only inside orchestrator transactions, always as an atomic
	// increment/decrement, never read-modify-write in application code.
	RunningOrders int `gorm:"not null;default:0"`
	// DeviceToken is an opaque push-subscription token (serialized webpush
	// subscription) used by the push dispatcher.
	DeviceToken string `gorm:"size:1024"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
