package models

import (
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
	"gorm.io/datatypes"
)

// SubscriptionLog records changes to a user's entitlement record.
// Use case: troubleshooting.
type SubscriptionLog struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(128);index:idx_subscription_log_user_id_id,priority:1;not null"`
	// Reason is the change reason.
	Reason types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores the record before the change in JSON format.
	Before datatypes.JSONType[*UserEntitlement] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores the record after the change in JSON format.
	After datatypes.JSONType[*UserEntitlement] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the trace id of the triggering request.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
