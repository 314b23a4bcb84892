package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// Notification is a persisted in-app notification. Delivery is best effort:
// settlement never fails because a notification insert did not stick.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
