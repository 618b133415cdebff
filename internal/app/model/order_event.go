package model

import "time"

type OrderEventType string

const (
	OrderEventCreated OrderEventType = "order_created"
	OrderEventDeleted OrderEventType = "order_deleted"
)

// OrderEvent is pushed to websocket subscribers after a committed change.
type OrderEvent struct {
	Type      OrderEventType `json:"type"`
	OrderID   uint           `json:"order_id"`
	PartCount int            `json:"part_count,omitempty"`
	At        time.Time      `json:"at"`
}
