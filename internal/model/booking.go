package model

import (
	"fmt"
	"time"
)

// Booking is a table reservation for one hour slot on one date.
// At most one booking may exist per (ReservationDate, ReservationSlot).
type Booking struct {
	ID              int64     `gorm:"primaryKey"`
	UserID          *int64    `gorm:"index"`
	GuestName       string    `gorm:"size:200;not null"`
	ReservationDate Date      `gorm:"not null;uniqueIndex:idx_bookings_date_slot,priority:1"`
	ReservationSlot int16     `gorm:"not null;uniqueIndex:idx_bookings_date_slot,priority:2"`
	CreatedAt       time.Time `gorm:"not null"`

	// Associations
	User *User `gorm:"constraint:OnDelete:CASCADE"`
}

func (b Booking) String() string {
	return fmt.Sprintf("%s - %s at %d:00", b.GuestName, b.ReservationDate, b.ReservationSlot)
}

// OwnerName returns the username of the booking's owner, or "Anonymous".
func (b Booking) OwnerName() string {
	if b.User == nil || b.User.Username == "" {
		return "Anonymous"
	}
	return b.User.Username
}
