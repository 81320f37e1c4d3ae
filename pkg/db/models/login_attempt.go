package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt records one login POST. Rows are append-only; the lockout
// check only ever counts them inside a trailing window.
type LoginAttempt struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null;index:idx_login_attempts_lookup"`
	IPAddress string    `gorm:"column:ip_address;type:text;not null;index:idx_login_attempts_lookup"`
	Succeeded bool      `gorm:"column:succeeded;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (LoginAttempt) TableName() string { return "login_attempts" }
