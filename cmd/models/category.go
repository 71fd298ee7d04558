package models

// Category groups transactions for one user. Names are free text and may
// repeat within a user; there is no uniqueness constraint.
type Category struct {
	BaseModel
	UserID uint   `gorm:"column:user_id;not null" json:"user_id"`
	Name   string `gorm:"column:name;size:40;not null" json:"name"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
