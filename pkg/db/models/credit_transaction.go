package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// CreditTransaction records one movement on a buyer's store-credit balance,
// with the balance snapshot before and after for audit.
type CreditTransaction struct {
	ID                 uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID            *uuid.UUID                 `gorm:"column:order_id;type:uuid;index"`
	Direction          enums.TransactionDirection `gorm:"column:direction;type:text;not null"`
	AmountCents        int                        `gorm:"column:amount_cents;not null"`
	Reason             enums.CreditReason         `gorm:"column:reason;type:text;not null"`
	BalanceBeforeCents int                        `gorm:"column:balance_before_cents;not null"`
	BalanceAfterCents  int                        `gorm:"column:balance_after_cents;not null"`
	Description        string                     `gorm:"column:description;not null"`
	CreatedAt          time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (t *CreditTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
