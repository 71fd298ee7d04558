package models

import (
	"time"
)

// BaseModel carries the audit fields shared by every record. The
// created_by/updated_by values are usernames, set by the handlers
// from the authenticated caller.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedBy string    `gorm:"column:created_by;size:50" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedBy string    `gorm:"column:updated_by;size:50" json:"updated_by"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
