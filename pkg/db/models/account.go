package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the shape shared by every credential partition. Each role
// lives in its own table; uniqueness of username and email is scoped to
// that table, never across partitions.
type Account struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username     string     `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FullName     string     `gorm:"column:full_name;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// SuperAdmin owns the whole system, including other admin tiers.
type SuperAdmin struct {
	Account
}

func (SuperAdmin) TableName() string { return "super_admins" }

// Admin manages the café's day-to-day: menu, inventory, staff, customers.
type Admin struct {
	Account
}

func (Admin) TableName() string { return "admins" }

// Employee works the counter.
type Employee struct {
	Account
	Position string `gorm:"column:position;not null;default:'Barista'"`
}

func (Employee) TableName() string { return "employees" }

// Customer holds a self-registered café account.
type Customer struct {
	Account
	Phone *string `gorm:"column:phone"`
}

func (Customer) TableName() string { return "customers" }
