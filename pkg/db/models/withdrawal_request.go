package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

// WithdrawalRequest is a seller's request to move wallet funds to their bank
// account. While pending, the amount is reserved on the wallet via
// pending_withdrawals_cents so the available balance reflects it immediately.
type WithdrawalRequest struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	SellerID        uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index"`
	AmountCents     int                    `gorm:"column:amount_cents;not null"`
	Status          enums.WithdrawalStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	BankDetails     types.BankDetails      `gorm:"column:bank_details;type:jsonb;serializer:json"`
	Note            *string                `gorm:"column:note"`
	RejectionReason *string                `gorm:"column:rejection_reason"`
	DecidedBy       *uuid.UUID             `gorm:"column:decided_by;type:uuid"`
	DecidedAt       *time.Time             `gorm:"column:decided_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (r *WithdrawalRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
