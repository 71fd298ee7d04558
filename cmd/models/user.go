package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;size:150;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"column:email;size:255" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
}

// AuthToken is the persisted bearer token for a user. A user has at most
// one token; logging in again returns the existing key, logging out
// deletes the row and thereby revokes the key.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex"`
	Key       string    `gorm:"column:key;size:512;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
