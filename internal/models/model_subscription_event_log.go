package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionEventLogStatus string

const (
	SubscriptionEventLogStatusReceived     SubscriptionEventLogStatus = "received"
	SubscriptionEventLogStatusHandled      SubscriptionEventLogStatus = "handled"
	SubscriptionEventLogStatusIgnored      SubscriptionEventLogStatus = "ignored"
	SubscriptionEventLogStatusHandleFailed SubscriptionEventLogStatus = "handle_failed"
)

// SubscriptionEventLog keeps every tier/status event received from the payment processor.
type SubscriptionEventLog struct {
	ID          string                     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventID     string                     `gorm:"column:event_id;type:varchar(128)" json:"event_id"`
	UserID      string                     `gorm:"column:user_id;type:varchar(128);index" json:"user_id"`
	TraceID     string                     `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EffectiveAt time.Time                  `gorm:"column:effective_at" json:"effective_at"`
	Data        datatypes.JSON             `gorm:"column:data;type:jsonb" json:"data"`
	Result      *datatypes.JSON            `gorm:"column:result;type:jsonb" json:"result"`
	Status      SubscriptionEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

func (SubscriptionEventLog) TableName() string { return "subscription_event_log" }
