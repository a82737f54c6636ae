package model

import "time"

// ChargingStation is a fixed public charging location listed in the admin panel.
type ChargingStation struct {
	ID          int64   `gorm:"primaryKey"`
	Name        string  `gorm:"size:256;not null"`
	Address     string  `gorm:"size:512"`
	Latitude    float64 `gorm:"not null"`
	Longitude   float64 `gorm:"not null"`
	ChargerType string  `gorm:"size:64"`
	Status      int     `gorm:"not null;default:1;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Shop is a partner service shop (tyre, detailing, etc.) in the marketplace.
type Shop struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:256;not null"`
	Address   string `gorm:"size:512"`
	Area      string `gorm:"size:128;index"`
	Services  string `gorm:"size:512"` // comma-separated service labels
	Status    int    `gorm:"not null;default:1;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
