package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a single charging session. It is open while EndTime is nil.
type Event struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	StartTime time.Time           `json:"start_time" gorm:"not null"`
	EndTime   *time.Time          `json:"end_time"`
	Volume    decimal.NullDecimal `json:"volume" gorm:"type:decimal(12,3)"`
	ChargerID uint                `json:"charger_id" gorm:"not null;index"`
	CardID    uint                `json:"card_id" gorm:"not null;index"`
	UserID    uint                `json:"user_id" gorm:"not null;index"`

	// Relations
	Charger *Charger `json:"charger,omitempty" gorm:"foreignKey:ChargerID;constraint:OnDelete:CASCADE"`
	Card    *Card    `json:"card,omitempty" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Open reports whether the session has not been ended yet.
func (e *Event) Open() bool {
	return e.EndTime == nil
}
