package model

import "time"

// User is an identity known from the identity provider.
type User struct {
	ID        int64     `gorm:"primaryKey"`
	Subject   string    `gorm:"uniqueIndex;size:191;not null"`
	Username  string    `gorm:"size:150;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
