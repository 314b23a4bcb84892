package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// User represents the canonical identity entity. Sellers and the platform
// admin are users with the corresponding role; buyers carry a store-credit
// balance funded by refunds.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email              string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	Name               string         `gorm:"column:name;not null"`
	Role               enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true"`
	CreditBalanceCents int            `gorm:"column:credit_balance_cents;not null;default:0"`
	LastLoginAt        *time.Time     `gorm:"column:last_login_at"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
