package model

import "time"

// User represents an account that owns RFID cards and starts charging sessions.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"first_name" gorm:"size:100;not null;index"`
	LastName     string    `json:"last_name" gorm:"size:100;not null;index"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash *string   `json:"-" gorm:"size:255"` // nil for externally created users
	Enabled      bool      `json:"enabled" gorm:"not null;index"`
	RoleID       uint      `json:"role_id" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

// FullName joins first and last name the way user-facing messages print them.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
