package model

import "time"

// PortableChargerBooking is a request for a portable charger delivered to the
// user's vehicle. The row always reflects the booking's current status; every
// transition is additionally appended to the service's history table.
type PortableChargerBooking struct {
	ID          string `gorm:"primaryKey;size:32"` // PCB-prefixed
	UserID      int64  `gorm:"index;not null"`
	UserName    string `gorm:"size:128"`
	AgentID     string `gorm:"size:32;index"` // empty until assigned
	Status      string `gorm:"size:8;not null;index"`
	SlotDate    string `gorm:"size:10;not null;index"` // YYYY-MM-DD in admin timezone
	SlotTime    string `gorm:"size:8;not null"`
	Address     string `gorm:"size:512"`
	VehicleNo   string `gorm:"size:32"`
	ServiceName string `gorm:"size:128"`
	Price       int64  `gorm:"not null;default:0"`
	// LockVersion guards Assign/Cancel against concurrent writers; every
	// orchestrator update requires the version it read and bumps it.
	LockVersion int64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PickupDropBooking is a vehicle pickup/drop-off request.
type PickupDropBooking struct {
	ID             string `gorm:"primaryKey;size:32"` // PDB-prefixed
	UserID         int64  `gorm:"index;not null"`
	UserName       string `gorm:"size:128"`
	AgentID        string `gorm:"size:32;index"`
	Status         string `gorm:"size:8;not null;index"`
	SlotDate       string `gorm:"size:10;not null;index"`
	SlotTime       string `gorm:"size:8;not null"`
	PickupAddress  string `gorm:"size:512"`
	DropoffAddress string `gorm:"size:512"`
	VehicleNo      string `gorm:"size:32"`
	Price          int64  `gorm:"not null;default:0"`
	LockVersion    int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingHistory is one append-only transition record. Each service keeps its
// own history table; the struct is mapped onto the right table by name.
type BookingHistory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	BookingID string `gorm:"size:32;index;not null"`
	Status    string `gorm:"size:8;not null"`
	Actor     string `gorm:"size:64;not null"` // who caused the transition
	Reason    string `gorm:"size:512"`
	CreatedAt time.Time
}

// Assignment is the transient "current pending assignment" record, one row per
// active (booking, agent) pairing. Removed on re-assignment or cancellation.
type Assignment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	BookingID string `gorm:"size:32;uniqueIndex;not null"`
	AgentID   string `gorm:"size:32;index;not null"`
	CreatedAt time.Time
}

// Concrete per-service history and assignment tables. Migrations need
// distinct types so generated index names do not collide; all runtime access
// goes through the table names on the service descriptor.

type PortableChargerHistory struct{ BookingHistory }

func (PortableChargerHistory) TableName() string { return "portable_charger_histories" }

type PickupDropHistory struct{ BookingHistory }

func (PickupDropHistory) TableName() string { return "pickup_drop_histories" }

type PortableChargerAssignment struct{ Assignment }

func (PortableChargerAssignment) TableName() string { return "portable_charger_assignments" }

type PickupDropAssignment struct{ Assignment }

func (PickupDropAssignment) TableName() string { return "pickup_drop_assignments" }
