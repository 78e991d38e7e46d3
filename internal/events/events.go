// Package events publishes charging session notifications to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Session notification types.
const (
	TypeChargingStarted = "charging.started"
	TypeChargingEnded   = "charging.ended"
)

// SessionMessage describes one session transition.
type SessionMessage struct {
	Type       string              `json:"type"`
	EventID    uint                `json:"event_id"`
	ChargerID  uint                `json:"charger_id"`
	CardID     uint                `json:"card_id"`
	UserID     uint                `json:"user_id"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    *time.Time          `json:"end_time,omitempty"`
	Volume     decimal.NullDecimal `json:"volume"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher delivers session messages. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, msg SessionMessage) error
	Close() error
}

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SessionMessage) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
