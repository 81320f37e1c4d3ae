package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// AuditEntry is an immutable record of one security-relevant action.
// The repository exposes insert and query only; there is no update or
// delete path anywhere in the codebase.
type AuditEntry struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Role          enums.Role       `gorm:"column:user_type;type:text;not null;index"`
	ActorID       *uuid.UUID       `gorm:"column:user_id;type:uuid"`
	ActorUsername string           `gorm:"column:username;type:text;not null"`
	Action        string           `gorm:"column:action;type:text;not null"`
	ActionType    enums.ActionType `gorm:"column:action_type;type:text;not null;index"`
	TargetTable   *string          `gorm:"column:target_table;type:text"`
	TargetID      *uuid.UUID       `gorm:"column:target_id;type:uuid"`
	IPAddress     string           `gorm:"column:ip_address;type:text;not null"`
	UserAgent     string           `gorm:"column:user_agent;type:text;not null"`
	Details       *string          `gorm:"column:details;type:text"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditEntry) TableName() string { return "audit_trail" }
