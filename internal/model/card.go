package model

import "time"

// MaxEnabledCardsPerUser is the quota checked when a user registers a card.
const MaxEnabledCardsPerUser = 5

// Card represents an RFID card owned by a user.
type Card struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"size:100;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Enabled   bool      `json:"enabled" gorm:"not null;index"`
	InUse     bool      `json:"in_use" gorm:"not null;default:false"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Deleted   bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
