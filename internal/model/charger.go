package model

import "time"

// Charger represents a charging station. InUse is true while a session is open on it.
type Charger struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null;index"`
	Latitude  float64    `json:"latitude" gorm:"not null"`
	Longitude float64    `json:"longitude" gorm:"not null"`
	InUse     bool       `json:"in_use" gorm:"not null;default:false"`
	CreatorID uint       `json:"creator_id" gorm:"not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	Deleted   bool       `json:"-" gorm:"not null;default:false"`

	// Relations
	Creator *User `json:"-" gorm:"foreignKey:CreatorID"`
}
