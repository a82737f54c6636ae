package model

import "time"

// User is a marketplace customer who requests bookings.
type User struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	Email       string `gorm:"size:256;uniqueIndex"`
	Phone       string `gorm:"size:32"`
	DeviceToken string `gorm:"size:1024"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
